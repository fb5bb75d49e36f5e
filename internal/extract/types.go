package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// Acquisition is the result of pulling media from a platform URL down to
// local disk.
type Acquisition struct {
	// VideoPath is the downloaded media file
	VideoPath string
	// CaptionPath is the WebVTT sidecar, empty when the platform offered none
	CaptionPath string

	Title    string
	Uploader string
	Duration float64 // seconds, 0 when unknown
}

// Downloader acquires media from a URL into destDir
type Downloader interface {
	// Name returns the downloader name (e.g., "yt-dlp", "direct")
	Name() string

	// Match returns true if this downloader can handle the URL.
	// The URL is pre-parsed so implementations can reliably check the host.
	Match(u *url.URL) bool

	// Download acquires the media into destDir
	Download(ctx context.Context, rawURL, destDir string) (*Acquisition, error)
}

var (
	urlRegex   = regexp.MustCompile(`https?://[^\s]+`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(name)

	// Titles scraped from platforms often embed share links
	result = urlRegex.ReplaceAllString(result, "")

	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	result = spaceRegex.ReplaceAllString(result, " ")

	// Most filesystems limit filenames to 255 bytes. For UTF-8 with CJK
	// characters (3-4 bytes each), 60 runes is safe, leaving room for
	// the timestamp prefix and extension.
	const maxRunes = 60
	runes := []rune(result)
	if len(runes) > maxRunes {
		result = string(runes[:maxRunes])
	}

	return strings.TrimSpace(result)
}
