package alignment_test

import (
	"errors"
	"slices"
	"testing"

	"reelforge/internal/alignment"
	"reelforge/internal/services"
)

func tok(word string, start, end float64) alignment.Token {
	return alignment.Token{Word: word, StartTime: start, EndTime: end}
}

func TestFindTitleEndTime(t *testing.T) {
	tests := []struct {
		name   string
		tokens []alignment.Token
		title  string
		want   float64
	}{
		{
			name:   "full match with interspersed tokens",
			tokens: []alignment.Token{tok("Hello", 0, 0.4), tok("um", 0.4, 0.5), tok("big", 0.5, 0.8), tok("world", 0.8, 1.2), tok("and", 1.2, 1.4)},
			title:  "Hello big World!",
			want:   1.2,
		},
		{
			name:   "case and punctuation insensitive",
			tokens: []alignment.Token{tok("hi", 0, 0.3), tok("world", 0.3, 0.9)},
			title:  "Hi, World!",
			want:   0.9,
		},
		{
			name:   "first word never found",
			tokens: []alignment.Token{tok("hello", 0, 0.3), tok("world", 0.3, 0.9)},
			title:  "zebra world",
			want:   alignment.DefaultTitleFallback,
		},
		{
			name:   "empty title",
			tokens: []alignment.Token{tok("hello", 0, 0.3)},
			title:  "",
			want:   alignment.DefaultTitleFallback,
		},
		{
			name:   "punctuation only title",
			tokens: []alignment.Token{tok("hello", 0, 0.3)},
			title:  "?! ... --",
			want:   alignment.DefaultTitleFallback,
		},
		{
			name:   "empty token stream",
			tokens: nil,
			title:  "hello",
			want:   alignment.DefaultTitleFallback,
		},
		{
			name:   "multi line title flattens",
			tokens: []alignment.Token{tok("first", 0, 0.5), tok("line", 0.5, 0.9), tok("second", 0.9, 1.4), tok("line", 1.4, 1.8), tok("body", 1.8, 2.2)},
			title:  "First line\n\nsecond   line",
			want:   1.8,
		},
		{
			name:   "smart apostrophe stripped",
			tokens: []alignment.Token{tok("don't", 0, 0.4), tok("stop", 0.4, 0.9)},
			title:  "Don’t stop",
			want:   0.9,
		},
		{
			name:   "compatibility forms normalize",
			tokens: []alignment.Token{tok("AITA", 0, 0.5), tok("today", 0.5, 1.0)},
			title:  "ＡＩＴＡ today",
			want:   1.0,
		},
		{
			name:   "partial match uses last matched word",
			tokens: []alignment.Token{tok("AITA", 0, 0.5), tok("for", 0.5, 0.8), tok("ruining", 0.8, 1.3), tok("my", 1.3, 1.5), tok("coworker", 1.5, 2.0)},
			title:  "AITA for ruining my coworker's big reveal",
			want:   1.5,
		},
		{
			// The possessive strips to "coworkers", which the backend emitted verbatim.
			name:   "stripped possessive matches identical token",
			tokens: []alignment.Token{tok("AITA", 0, 0.5), tok("for", 0.5, 0.8), tok("ruining", 0.8, 1.3), tok("my", 1.3, 1.5), tok("coworkers", 1.5, 2.0)},
			title:  "AITA for ruining my coworker's big reveal",
			want:   2.0,
		},
		{
			name:   "stops at first complete match",
			tokens: []alignment.Token{tok("the", 0, 0.2), tok("end", 0.2, 0.6), tok("the", 0.6, 0.8), tok("end", 0.8, 1.2)},
			title:  "The End",
			want:   0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alignment.FindTitleEndTime(tt.tokens, tt.title)
			if err != nil {
				t.Fatalf("FindTitleEndTime: %v", err)
			}
			if got != tt.want {
				t.Fatalf("FindTitleEndTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindTitleEndTimeNeverRegresses(t *testing.T) {
	// After "one" matches, a repeated "one" must not count again and the
	// cursor keeps waiting for "two".
	tokens := []alignment.Token{tok("one", 0, 1), tok("one", 1, 2)}
	got, err := alignment.FindTitleEndTime(tokens, "one two")
	if err != nil {
		t.Fatalf("FindTitleEndTime: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected end of first match 1, got %v", got)
	}

	tokens = []alignment.Token{tok("go", 0, 1), tok("stop", 1, 2), tok("go", 2, 3), tok("stop", 3, 4)}
	got, err = alignment.FindTitleEndTime(tokens, "go go stop")
	if err != nil {
		t.Fatalf("FindTitleEndTime: %v", err)
	}
	if got != 4 {
		t.Fatalf("expected completion on the final stop at 4, got %v", got)
	}
}

func TestFindTitleEndTimeDoesNotMutateInput(t *testing.T) {
	tokens := []alignment.Token{tok("Hello,", 0, 0.5), tok("World!", 0.5, 1)}
	before := slices.Clone(tokens)
	if _, err := alignment.FindTitleEndTime(tokens, "hello world"); err != nil {
		t.Fatalf("FindTitleEndTime: %v", err)
	}
	if !slices.Equal(tokens, before) {
		t.Fatalf("input mutated: %+v", tokens)
	}
}

func TestFindTitleEndTimeRejectsUnsortedTokens(t *testing.T) {
	tokens := []alignment.Token{tok("b", 1, 2), tok("a", 0, 1)}
	_, err := alignment.FindTitleEndTime(tokens, "a b")
	var invalid *alignment.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if invalid.Index != 1 {
		t.Fatalf("expected index 1, got %d", invalid.Index)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestTitleWords(t *testing.T) {
	got := alignment.TitleWords("  AITA for\nruining my coworker's\t(big) reveal?! ")
	want := []string{"aita", "for", "ruining", "my", "coworkers", "big", "reveal"}
	if !slices.Equal(got, want) {
		t.Fatalf("TitleWords = %q, want %q", got, want)
	}
}
