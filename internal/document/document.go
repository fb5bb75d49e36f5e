// Package document extracts analyzable content from uploaded documents.
// Text-bearing files yield their text; scanned or image-only PDFs yield
// one rendered image per page instead, never both.
package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Status tells the oracle layer what kind of payload the extraction produced
type Status string

const (
	// StatusExtracted means structured text was recovered
	StatusExtracted Status = "extracted"
	// StatusRenderedPending means the document had no usable text layer;
	// pages were rendered as images for visual analysis
	StatusRenderedPending Status = "rendered-images-pending"
)

// MinTextChars is the threshold below which a PDF counts as image-based
const MinTextChars = 50

// ErrLegacyDoc marks the pre-OOXML .doc format, which has no extractor
var ErrLegacyDoc = errors.New("legacy .doc format is not supported, convert to .docx or .pdf")

// Extraction is the result of processing one document
type Extraction struct {
	Status    Status   `json:"status"`
	Text      string   `json:"text,omitempty"`
	Images    []string `json:"images,omitempty"`
	PageCount int      `json:"page_count,omitempty"`
}

// Extract processes the document at path. Images (embedded rasters for
// text PDFs, page renders for image-based ones) are written under
// imagesDir, which is created on demand.
func Extract(path, imagesDir string) (*Extraction, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt":
		return extractPlainText(path)
	case ".rtf":
		return extractRTF(path)
	case ".docx":
		return extractDOCX(path)
	case ".pdf":
		return extractPDF(path, imagesDir)
	case ".doc":
		return nil, ErrLegacyDoc
	default:
		return nil, fmt.Errorf("no document extractor for %s", ext)
	}
}

func extractPlainText(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Extraction{
		Status: StatusExtracted,
		Text:   strings.TrimSpace(string(data)),
	}, nil
}

func extractRTF(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := stripRTF(string(data))
	slog.Debug("rtf extracted", "path", path, "chars", len(text))
	return &Extraction{
		Status: StatusExtracted,
		Text:   text,
	}, nil
}

// stripRTF removes RTF control words and group braces, keeping the
// readable text. Good enough for the plain documents users upload; RTF
// with embedded objects degrades to whatever text survives.
func stripRTF(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '{', '}':
			i++
		case '\\':
			i++
			if i < len(s) && (s[i] == '\\' || s[i] == '{' || s[i] == '}') {
				b.WriteByte(s[i])
				i++
				continue
			}
			// Control word: letters then optional numeric parameter
			for i < len(s) && isAlpha(s[i]) {
				i++
			}
			if i < len(s) && (s[i] == '-' || isDigit(s[i])) {
				i++
				for i < len(s) && isDigit(s[i]) {
					i++
				}
			}
			// A single space terminates the control word
			if i < len(s) && s[i] == ' ' {
				i++
			}
		case '\r', '\n':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return strings.TrimSpace(b.String())
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
