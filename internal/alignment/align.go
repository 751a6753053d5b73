package alignment

// Result is the outcome of aligning one narration with its title.
type Result struct {
	TitleEnd float64
	Merged   []Token
	Body     []Token
}

// Align finds the title boundary on the raw stream, then merges the stream and
// keeps the captions that start at or after the boundary. A nil merger uses
// the default configuration.
func Align(raw []Token, title string, m *Merger) (Result, error) {
	if m == nil {
		m = defaultMerger
	}
	titleEnd, err := FindTitleEndTime(raw, title)
	if err != nil {
		return Result{}, err
	}
	merged, err := m.MergeForSubtitles(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{
		TitleEnd: titleEnd,
		Merged:   merged,
		Body:     BodyCaptions(merged, titleEnd),
	}, nil
}

// BodyCaptions returns the captions whose start time is at or after boundary.
func BodyCaptions(merged []Token, boundary float64) []Token {
	body := make([]Token, 0, len(merged))
	for _, tok := range merged {
		if tok.StartTime >= boundary {
			body = append(body, tok)
		}
	}
	return body
}
