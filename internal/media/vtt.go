package media

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

var cueTimingRegex = regexp.MustCompile(`\d{2}:\d{2}(:\d{2})?\.\d{3}\s+-->`)

// ParseVTT flattens a WebVTT caption stream into a plain transcript.
// Header, cue numbers, cue timings and NOTE blocks are dropped; cue text
// lines are joined with spaces, with consecutive duplicates removed
// (auto-generated captions repeat lines across overlapping cues).
func ParseVTT(r io.Reader) string {
	var parts []string
	var last string
	inNote := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			inNote = false
			continue
		}
		if inNote {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			inNote = strings.HasPrefix(line, "NOTE")
			continue
		}
		if cueTimingRegex.MatchString(line) {
			continue
		}
		if isDigits(line) {
			continue
		}

		// Inline cue tags like <c> and <00:00:01.000> carry no text value
		line = stripCueTags(line)
		if line == "" || line == last {
			continue
		}
		parts = append(parts, line)
		last = line
	}

	return strings.Join(parts, " ")
}

// ParseVTTFile reads and flattens a WebVTT file
func ParseVTTFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ParseVTT(f), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

var cueTagRegex = regexp.MustCompile(`<[^>]*>`)

func stripCueTags(s string) string {
	return strings.TrimSpace(cueTagRegex.ReplaceAllString(s, ""))
}
