package kokoro

import "testing"

func TestVoicesCatalogue(t *testing.T) {
	voices := Voices()
	if len(voices) != len(voiceIDs) {
		t.Fatalf("expected %d voices, got %d", len(voiceIDs), len(voices))
	}
	var heart Voice
	for _, v := range voices {
		if v.ID == "af_heart" {
			heart = v
		}
	}
	if heart.Name != "Heart" || heart.Language != "American English" || heart.Gender != "female" {
		t.Fatalf("unexpected af_heart entry: %+v", heart)
	}
}

func TestKnownVoice(t *testing.T) {
	tests := map[string]bool{
		"af_heart":            true,
		"bm_george":           true,
		"af_bella+af_sky":     true,
		"af_bella(2)+af_sky":  true,
		"af_bella+nobody":     false,
		"":                    false,
		"totally_made_up_one": false,
	}
	for id, want := range tests {
		if got := KnownVoice(id); got != want {
			t.Fatalf("KnownVoice(%q) = %v, want %v", id, got, want)
		}
	}
}
