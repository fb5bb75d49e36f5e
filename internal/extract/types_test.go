package extract

import (
	"net/url"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slashes", "a/b\\c", "a-b-c"},
		{"colons", "12:30 news", "12-30 news"},
		{"forbidden chars", `what? "quoted" <tag> |pipe| *star*`, "what quoted tag pipe star"},
		{"embedded url", "Check this https://t.co/abc123 out", "Check this out"},
		{"newlines collapse", "line one\nline two", "line one line two"},
		{"trailing dots", "name...", "name"},
		{"plain", "Election Night Coverage", "Election Night Coverage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("got: %q want: %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := strings.Repeat("标题", 100)
	got := SanitizeFilename(long)
	if n := len([]rune(got)); n > 60 {
		t.Errorf("sanitized length = %d runes, want <= 60", n)
	}
}

func TestMatchFallsBackToYtdlp(t *testing.T) {
	d := Match("https://www.tiktok.com/@user/video/123")
	if d == nil {
		t.Fatal("Match returned nil, want fallback downloader")
	}
	if d.Name() != "yt-dlp" {
		t.Errorf("downloader = %q, want yt-dlp", d.Name())
	}
}

func TestDirectMatch(t *testing.T) {
	d := NewDirect()

	withExt, _ := url.Parse("https://cdn.example.com/clip.mp4")
	if !d.Match(withExt) {
		t.Error("Match(clip.mp4) = false, want true")
	}

	noExt, _ := url.Parse("https://example.com/watch")
	if d.Match(noExt) {
		t.Error("Match(/watch) = true, want false")
	}
}
