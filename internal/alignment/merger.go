package alignment

import "strings"

// MergeConfig lists the word and punctuation sets the merger works with.
// Entries are matched exactly against token words, including case.
type MergeConfig struct {
	MergeWords         []string
	AllowedPunctuation []string
	RemovedPunctuation []string
}

// DefaultMergeConfig returns the sets used for English narration.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		MergeWords:         []string{"a", "an", "the", "or", "and"},
		AllowedPunctuation: []string{"?"},
		RemovedPunctuation: []string{"!", ",", ".", ":", ";"},
	}
}

// Merger builds caption tokens from a raw token stream. A Merger is immutable
// and safe for concurrent use.
type Merger struct {
	mergeWords map[string]struct{}
	allowed    map[string]struct{}
	removed    map[string]struct{}
}

// NewMerger builds a Merger from cfg.
func NewMerger(cfg MergeConfig) *Merger {
	return &Merger{
		mergeWords: toSet(cfg.MergeWords),
		allowed:    toSet(cfg.AllowedPunctuation),
		removed:    toSet(cfg.RemovedPunctuation),
	}
}

var defaultMerger = NewMerger(DefaultMergeConfig())

// MergeForSubtitles merges raw using the default configuration.
func MergeForSubtitles(raw []Token) ([]Token, error) {
	return defaultMerger.MergeForSubtitles(raw)
}

// MergeForSubtitles drops removed punctuation, appends allowed punctuation to
// the preceding caption and joins each merge word with the token after it.
// A merge word absorbs at most one following word, so "and the cat" yields
// "and the" followed by "cat".
func (m *Merger) MergeForSubtitles(raw []Token) ([]Token, error) {
	if err := ValidateTokens(raw); err != nil {
		return nil, err
	}
	out := make([]Token, 0, len(raw))
	for i := 0; i < len(raw); {
		tok := raw[i]
		switch {
		case m.isRemoved(tok.Word):
			i++
		case m.isAllowed(tok.Word):
			if len(out) > 0 {
				last := &out[len(out)-1]
				last.Word += tok.Word
				last.EndTime = tok.EndTime
			} else {
				out = append(out, tok)
			}
			i++
		case m.isMergeWord(tok.Word) && i+1 < len(raw) && !m.isRemoved(raw[i+1].Word):
			next := raw[i+1]
			merged := Token{
				Word:      tok.Word + " " + next.Word,
				StartTime: tok.StartTime,
				EndTime:   next.EndTime,
			}
			i += 2
			if i < len(raw) && m.isAllowed(raw[i].Word) {
				merged.Word += raw[i].Word
				merged.EndTime = raw[i].EndTime
				i++
			}
			out = append(out, merged)
		default:
			out = append(out, tok)
			i++
		}
	}
	return out, nil
}

func (m *Merger) isMergeWord(word string) bool { return contains(m.mergeWords, word) }
func (m *Merger) isAllowed(word string) bool   { return contains(m.allowed, word) }
func (m *Merger) isRemoved(word string) bool   { return contains(m.removed, word) }

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
