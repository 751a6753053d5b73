package captions

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"reelforge/internal/alignment"
	"reelforge/internal/fileutil"
)

// BuildSRT renders one numbered cue per body token. Empty words are skipped
// without consuming a cue number.
func BuildSRT(body []alignment.Token) string {
	var b strings.Builder
	n := 0
	for _, tok := range body {
		text := strings.TrimSpace(strings.ReplaceAll(tok.Word, "\n", " "))
		if text == "" {
			continue
		}
		end := tok.EndTime
		if end < tok.StartTime {
			end = tok.StartTime
		}
		n++
		if n > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", n, srtTime(tok.StartTime), srtTime(end), text)
	}
	return b.String()
}

// WriteSRT renders and atomically writes the sidecar to path.
func WriteSRT(path string, body []alignment.Token) error {
	if err := fileutil.WriteFileAtomic(path, []byte(BuildSRT(body)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// srtTime formats seconds as HH:MM:SS,mmm.
func srtTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	msTotal := int64(math.Round(seconds * 1000))
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func parseSRTTime(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// ValidateSRT checks a written sidecar and returns issue codes; an empty
// result means it passed. When audioSeconds is positive, cues ending more than
// a second past the narration are reported.
func ValidateSRT(path string, audioSeconds float64) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("read_error: %v", err)}
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return []string{"empty_subtitle_file"}
	}

	var issues []string
	var last, prevStart float64
	for i, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			issues = append(issues, fmt.Sprintf("malformed_cue: %d", i+1))
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			issues = append(issues, fmt.Sprintf("malformed_cue: %d", i+1))
			continue
		}
		start, errStart := parseSRTTime(parts[0])
		end, errEnd := parseSRTTime(parts[1])
		if errStart != nil || errEnd != nil {
			issues = append(issues, fmt.Sprintf("timestamp_parse_error: cue %d", i+1))
			continue
		}
		if start < prevStart {
			issues = append(issues, fmt.Sprintf("out_of_order: cue %d", i+1))
		}
		prevStart = start
		last = max(last, end)
	}
	if audioSeconds > 0 && last > audioSeconds+1 {
		issues = append(issues, fmt.Sprintf("duration_mismatch: delta=%.1fs", last-audioSeconds))
	}
	return issues
}
