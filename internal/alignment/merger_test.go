package alignment_test

import (
	"slices"
	"testing"

	"reelforge/internal/alignment"
)

func TestMergeForSubtitles(t *testing.T) {
	tests := []struct {
		name   string
		tokens []alignment.Token
		want   []alignment.Token
	}{
		{
			name:   "lone removed punctuation",
			tokens: []alignment.Token{tok("!", 0, 0.1)},
			want:   []alignment.Token{},
		},
		{
			name:   "merge word joins next",
			tokens: []alignment.Token{tok("the", 0, 1), tok("cat", 1, 2)},
			want:   []alignment.Token{tok("the cat", 0, 2)},
		},
		{
			name:   "merge folds trailing question mark",
			tokens: []alignment.Token{tok("the", 0, 1), tok("cat", 1, 2), tok("?", 2, 2.1)},
			want:   []alignment.Token{tok("the cat?", 0, 2.1)},
		},
		{
			name:   "allowed punctuation appends to previous",
			tokens: []alignment.Token{tok("really", 0, 0.5), tok("?", 0.5, 0.6)},
			want:   []alignment.Token{tok("really?", 0, 0.6)},
		},
		{
			name:   "allowed punctuation without previous stands alone",
			tokens: []alignment.Token{tok("?", 0, 0.1), tok("why", 0.1, 0.4)},
			want:   []alignment.Token{tok("?", 0, 0.1), tok("why", 0.1, 0.4)},
		},
		{
			name:   "removed punctuation dropped between words",
			tokens: []alignment.Token{tok("Hello", 0, 0.4), tok(",", 0.4, 0.4), tok("friend", 0.4, 0.9), tok(".", 0.9, 0.9)},
			want:   []alignment.Token{tok("Hello", 0, 0.4), tok("friend", 0.4, 0.9)},
		},
		{
			name:   "merge word at end stays",
			tokens: []alignment.Token{tok("cats", 0, 0.5), tok("and", 0.5, 0.8)},
			want:   []alignment.Token{tok("cats", 0, 0.5), tok("and", 0.5, 0.8)},
		},
		{
			name:   "merge word before removed punctuation stays",
			tokens: []alignment.Token{tok("a", 0, 0.2), tok(",", 0.2, 0.2), tok("dog", 0.2, 0.6)},
			want:   []alignment.Token{tok("a", 0, 0.2), tok("dog", 0.2, 0.6)},
		},
		{
			name:   "merge word matching is case sensitive",
			tokens: []alignment.Token{tok("The", 0, 0.3), tok("cat", 0.3, 0.7)},
			want:   []alignment.Token{tok("The", 0, 0.3), tok("cat", 0.3, 0.7)},
		},
		{
			// Consecutive merge words are not chained: "and" absorbs "the" and
			// "cat" is left on its own. Kept as current behavior.
			name:   "no chained merges",
			tokens: []alignment.Token{tok("and", 0, 0.2), tok("the", 0.2, 0.4), tok("cat", 0.4, 0.8)},
			want:   []alignment.Token{tok("and the", 0, 0.4), tok("cat", 0.4, 0.8)},
		},
		{
			name:   "empty input",
			tokens: nil,
			want:   []alignment.Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alignment.MergeForSubtitles(tt.tokens)
			if err != nil {
				t.Fatalf("MergeForSubtitles: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("MergeForSubtitles = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeForSubtitlesIsIdempotentOnMergedOutput(t *testing.T) {
	raw := []alignment.Token{
		tok("I", 0, 0.1), tok("saw", 0.1, 0.4), tok("a", 0.4, 0.5), tok("dog", 0.5, 0.9),
		tok("and", 0.9, 1.1), tok("it", 1.1, 1.3), tok("barked", 1.3, 1.8), tok("!", 1.8, 1.8),
	}
	first, err := alignment.MergeForSubtitles(raw)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, err := alignment.MergeForSubtitles(first)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("merge not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestMergeForSubtitlesDoesNotMutateInput(t *testing.T) {
	raw := []alignment.Token{tok("why", 0, 0.4), tok("?", 0.4, 0.5), tok("the", 0.5, 0.6), tok("end", 0.6, 1)}
	before := slices.Clone(raw)
	if _, err := alignment.MergeForSubtitles(raw); err != nil {
		t.Fatalf("MergeForSubtitles: %v", err)
	}
	if !slices.Equal(raw, before) {
		t.Fatalf("input mutated: %+v", raw)
	}
}

func TestMergerCustomConfig(t *testing.T) {
	m := alignment.NewMerger(alignment.MergeConfig{
		MergeWords:         []string{"de", "la"},
		AllowedPunctuation: []string{"?", "!"},
		RemovedPunctuation: []string{","},
	})
	raw := []alignment.Token{tok("de", 0, 0.2), tok("nada", 0.2, 0.6), tok("!", 0.6, 0.7), tok(",", 0.7, 0.7), tok("the", 0.7, 0.9), tok("end", 0.9, 1.2)}
	got, err := m.MergeForSubtitles(raw)
	if err != nil {
		t.Fatalf("MergeForSubtitles: %v", err)
	}
	want := []alignment.Token{tok("de nada!", 0, 0.7), tok("the", 0.7, 0.9), tok("end", 0.9, 1.2)}
	if !slices.Equal(got, want) {
		t.Fatalf("MergeForSubtitles = %+v, want %+v", got, want)
	}
}

func TestMergeForSubtitlesRejectsNegativeTimes(t *testing.T) {
	if _, err := alignment.MergeForSubtitles([]alignment.Token{tok("x", -1, 0)}); err == nil {
		t.Fatal("expected error for negative start time")
	}
}
