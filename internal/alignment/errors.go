package alignment

import (
	"fmt"

	"reelforge/internal/services"
)

// InvalidInputError reports a token stream the caller should never have
// produced: unsorted tokens, missing fields or impossible times.
type InvalidInputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid token stream: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("invalid token %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("invalid token %d: %s %s", e.Index, e.Field, e.Reason)
	}
}

// Is lets callers classify the error with services.ErrValidation.
func (e *InvalidInputError) Is(target error) bool {
	return target == services.ErrValidation
}
