package alignment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultTitleFallback is returned when no title word can be located in the
// token stream, including when the title has no words at all.
const DefaultTitleFallback = 2.0

// FindTitleEndTime returns the end time of the last title word found in the
// raw token stream. Matching is case and punctuation insensitive and only ever
// moves forward: unmatched tokens are skipped and a matched word is never
// revisited. A partial match yields the end time of the last matched word.
func FindTitleEndTime(raw []Token, title string) (float64, error) {
	if err := ValidateTokens(raw); err != nil {
		return 0, err
	}
	wanted := TitleWords(title)
	if len(wanted) == 0 {
		return DefaultTitleFallback, nil
	}

	matched := 0
	lastEnd := DefaultTitleFallback
	for _, tok := range raw {
		if cleanWord(tok.Word) != wanted[matched] {
			continue
		}
		matched++
		lastEnd = tok.EndTime
		if matched == len(wanted) {
			break
		}
	}
	return lastEnd, nil
}

// TitleWords normalizes a title into the lowercase word list used for
// matching. Newlines and whitespace runs collapse, and every character that is
// not a letter, number, underscore or space is removed.
func TitleWords(title string) []string {
	flat := strings.Join(strings.Fields(norm.NFKC.String(title)), " ")
	return strings.Fields(strings.ToLower(stripPunctuation(flat)))
}

func cleanWord(word string) string {
	return strings.TrimSpace(strings.ToLower(stripPunctuation(word)))
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}
