package captions

import (
	"fmt"
	"math"
	"strings"

	"reelforge/internal/alignment"
	"reelforge/internal/fileutil"
)

// Style controls the look of burned-in captions. Sizes are in script pixels,
// which match the output frame because PlayResX/PlayResY equal its size.
//
// CaptionY is the top edge of a CaptionBoxHeight tall band; caption text is
// centred inside that band.
type Style struct {
	Width            int
	Height           int
	Font             string
	CaptionSize      int
	TitleSize        int
	Stroke           int
	CaptionY         int
	CaptionBoxHeight int
	TitleMarginX     int
	TitleMaxLines    int
}

// DefaultStyle matches the 1080x1920 vertical layout.
func DefaultStyle() Style {
	return Style{
		Width:            1080,
		Height:           1920,
		Font:             "Open Sans",
		CaptionSize:      110,
		TitleSize:        70,
		Stroke:           10,
		CaptionY:         1100,
		CaptionBoxHeight: 200,
		TitleMarginX:     60,
		TitleMaxLines:    6,
	}
}

// Document is everything needed to build one ASS file.
type Document struct {
	Title    string
	TitleEnd float64
	Body     []alignment.Token
}

// BuildASS renders doc with style. The title event spans [0, TitleEnd]; each
// body token becomes its own event centred in the caption band.
func BuildASS(style Style, doc Document) string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", style.Width)
	fmt.Fprintf(&b, "PlayResY: %d\n", style.Height)
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("ScaledBorderAndShadow: yes\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Title,%s,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,%d,0,5,%d,%d,0,1\n",
		style.Font, style.TitleSize, max(style.Stroke/2, 1), style.TitleMarginX, style.TitleMarginX)
	fmt.Fprintf(&b, "Style: Caption,%s,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,%d,0,5,0,0,0,1\n\n",
		style.Font, style.CaptionSize, style.Stroke)

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	if title := titleText(doc.Title, style.TitleMaxLines); title != "" && doc.TitleEnd > 0 {
		writeDialogue(&b, 1, 0, doc.TitleEnd, "Title", title)
	}
	pos := fmt.Sprintf("{\\pos(%d,%d)}", style.Width/2, style.captionCentreY())
	for _, tok := range doc.Body {
		text := sanitizeASS(tok.Word)
		if text == "" {
			continue
		}
		writeDialogue(&b, 0, tok.StartTime, tok.EndTime, "Caption", pos+text)
	}
	return b.String()
}

func (s Style) captionCentreY() int {
	return s.CaptionY + max(s.CaptionBoxHeight, 0)/2
}

// WriteASS renders and atomically writes the document to path.
func WriteASS(path string, style Style, doc Document) error {
	if err := fileutil.WriteFileAtomic(path, []byte(BuildASS(style, doc)), 0o644); err != nil {
		return fmt.Errorf("write ass: %w", err)
	}
	return nil
}

func writeDialogue(b *strings.Builder, layer int, start, end float64, style, text string) {
	if end < start {
		end = start
	}
	fmt.Fprintf(b, "Dialogue: %d,%s,%s,%s,,0,0,0,,%s\n", layer, assTime(start), assTime(end), style, text)
}

// titleText keeps the author's line breaks, capped at maxLines.
func titleText(title string, maxLines int) string {
	var lines []string
	for _, line := range strings.Split(title, "\n") {
		line = sanitizeASS(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines-1], strings.Join(lines[maxLines-1:], " "))
	}
	return strings.Join(lines, `\N`)
}

// assTime formats seconds as H:MM:SS.cc.
func assTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	cs %= 360000
	m := cs / 6000
	cs %= 6000
	s := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// FilterPath escapes an ASS path for use inside ffmpeg's subtitles= filter.
func FilterPath(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `,`, `\,`, `[`, `\[`, `]`, `\]`)
	return r.Replace(path)
}
