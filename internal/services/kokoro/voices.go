package kokoro

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Voice describes one Kokoro voice pack.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

var voiceIDs = []string{
	"af_alloy", "af_aoede", "af_bella", "af_heart", "af_jadzia", "af_jessica",
	"af_kore", "af_nicole", "af_nova", "af_river", "af_sarah", "af_sky", "af_v0",
	"af_v0bella", "af_v0irulan", "af_v0nicole", "af_v0sarah", "af_v0sky",
	"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam", "am_michael",
	"am_onyx", "am_puck", "am_santa", "am_v0adam", "am_v0gurney", "am_v0michael",
	"bf_alice", "bf_emma", "bf_lily", "bf_v0emma", "bf_v0isabella", "bm_daniel",
	"bm_fable", "bm_george", "bm_lewis", "bm_v0george", "bm_v0lewis", "ef_dora",
	"em_alex", "em_santa", "ff_siwis", "hf_alpha", "hf_beta", "hm_omega", "hm_psi",
	"if_sara", "im_nicola", "jf_alpha", "jf_gongitsune", "jf_nezumi",
	"jf_tebukuro", "jm_kumo", "pf_dora", "pm_alex", "pm_santa", "zf_xiaobei",
	"zf_xiaoni", "zf_xiaoxiao", "zf_xiaoyi", "zm_yunjian", "zm_yunxi", "zm_yunxia",
	"zm_yunyang",
}

var voiceLanguages = map[byte]string{
	'a': "American English",
	'b': "British English",
	'e': "Spanish",
	'f': "French",
	'h': "Hindi",
	'i': "Italian",
	'j': "Japanese",
	'p': "Brazilian Portuguese",
	'z': "Mandarin Chinese",
}

// Voices returns the known voice catalogue in display order.
func Voices() []Voice {
	titler := cases.Title(language.Und)
	out := make([]Voice, 0, len(voiceIDs))
	for _, id := range voiceIDs {
		v := Voice{ID: id, Language: "Unknown", Gender: "unknown"}
		if len(id) > 3 && id[2] == '_' {
			if lang, ok := voiceLanguages[id[0]]; ok {
				v.Language = lang
			}
			switch id[1] {
			case 'f':
				v.Gender = "female"
			case 'm':
				v.Gender = "male"
			}
			v.Name = titler.String(strings.TrimPrefix(id[3:], "v0"))
		}
		out = append(out, v)
	}
	return out
}

// KnownVoice reports whether id is in the catalogue. Voice blends such as
// "af_bella+af_sky" are accepted when every part is known.
func KnownVoice(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for _, part := range strings.Split(id, "+") {
		part = strings.TrimSpace(part)
		if idx := strings.IndexByte(part, '('); idx > 0 {
			part = part[:idx]
		}
		if !slices.Contains(voiceIDs, part) {
			return false
		}
	}
	return true
}
