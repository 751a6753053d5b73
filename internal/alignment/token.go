package alignment

import (
	"encoding/json"
	"fmt"
	"math"
)

// Token is one timed word (or punctuation mark) reported by the speech backend.
type Token struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Duration returns the span covered by the token, never negative.
func (t Token) Duration() float64 {
	if t.EndTime < t.StartTime {
		return 0
	}
	return t.EndTime - t.StartTime
}

type wireToken struct {
	Word      *string  `json:"word"`
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
}

// DecodeTokens parses a JSON array of backend timestamps. Entries missing any
// of word, start_time or end_time are rejected.
func DecodeTokens(data []byte) ([]Token, error) {
	var wire []wireToken
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &InvalidInputError{Index: -1, Reason: fmt.Sprintf("decode timestamps: %v", err)}
	}
	tokens := make([]Token, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.Word == nil:
			return nil, &InvalidInputError{Index: i, Field: "word", Reason: "missing"}
		case w.StartTime == nil:
			return nil, &InvalidInputError{Index: i, Field: "start_time", Reason: "missing"}
		case w.EndTime == nil:
			return nil, &InvalidInputError{Index: i, Field: "end_time", Reason: "missing"}
		}
		tokens = append(tokens, Token{Word: *w.Word, StartTime: *w.StartTime, EndTime: *w.EndTime})
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// ValidateTokens checks that times are finite and non-negative and that the
// stream is ordered by start time.
func ValidateTokens(tokens []Token) error {
	prev := math.Inf(-1)
	for i, tok := range tokens {
		if err := checkTime(i, "start_time", tok.StartTime); err != nil {
			return err
		}
		if err := checkTime(i, "end_time", tok.EndTime); err != nil {
			return err
		}
		if tok.StartTime < prev {
			return &InvalidInputError{
				Index:  i,
				Field:  "start_time",
				Reason: fmt.Sprintf("%.3f precedes previous start %.3f", tok.StartTime, prev),
			}
		}
		prev = tok.StartTime
	}
	return nil
}

func checkTime(index int, field string, v float64) error {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return &InvalidInputError{Index: index, Field: field, Reason: "not a finite number"}
	case v < 0:
		return &InvalidInputError{Index: index, Field: field, Reason: "negative"}
	}
	return nil
}
