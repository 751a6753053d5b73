// Package script parses batch script files into title/body pairs.
//
// A line beginning with "##" flips the parser between title and body mode.
// The marker line itself is dropped.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const separator = "##"

// Entry is one video worth of script.
type Entry struct {
	Title string
	Body  string
	// Line is the 1-based line where the entry's title began.
	Line int
}

// Parse reads a batch script. Pairs whose title or body trim to empty are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	var (
		entries   []Entry
		title     []string
		body      []string
		inBody    bool
		startLine int
		lineNo    int
	)

	flush := func() {
		t := strings.TrimSpace(strings.Join(title, "\n"))
		b := strings.TrimSpace(strings.Join(body, "\n"))
		if t != "" && b != "" {
			entries = append(entries, Entry{Title: t, Body: b, Line: startLine})
		}
		title = title[:0]
		body = body[:0]
		startLine = 0
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.HasPrefix(line, separator) {
			if len(title) > 0 && len(body) > 0 {
				flush()
			}
			inBody = !inBody
			continue
		}
		if inBody {
			body = append(body, line)
			continue
		}
		if startLine == 0 && strings.TrimSpace(line) != "" {
			startLine = lineNo
		}
		title = append(title, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if len(title) > 0 && len(body) > 0 {
		flush()
	}
	return entries, nil
}

// ParseString is a convenience wrapper for in-memory scripts.
func ParseString(content string) ([]Entry, error) {
	return Parse(strings.NewReader(content))
}

// ParseFile opens and parses the script at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
