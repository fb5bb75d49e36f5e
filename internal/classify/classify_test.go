package classify

import (
	"errors"
	"testing"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Channel
	}{
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", DirectReference},
		{"youtube watch", "https://www.youtube.com/watch?v=abc123", DirectReference},
		{"youtube mobile", "https://m.youtube.com/watch?v=abc123", DirectReference},
		{"youtube nocookie", "https://www.youtube-nocookie.com/embed/abc", DirectReference},
		{"instagram reel", "https://www.instagram.com/reel/xyz/", PlatformDownload},
		{"tiktok", "https://www.tiktok.com/@user/video/123", PlatformDownload},
		{"x status", "https://x.com/user/status/123", PlatformDownload},
		{"fb watch", "https://fb.watch/abc/", PlatformDownload},
		{"twitch", "https://www.twitch.tv/somechannel", PlatformDownload},
		{"news article", "https://example.com/article", Webpage},
		{"blog with path", "http://blog.example.org/2024/01/post.html", Webpage},
		{"direct pdf url", "https://example.com/report.pdf", DocumentFile},
		{"direct mp4 url", "https://cdn.example.com/clip.mp4", VideoFile},
		{"direct jpeg url", "https://img.example.com/photo.jpeg", ImageFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := URL(tt.url)
			if err != nil {
				t.Fatalf("URL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestURLUnsupported(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com/file.mp4", "file:///etc/passwd"} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(raw)
			var ute *UnsupportedTypeError
			if !errors.As(err, &ute) {
				t.Fatalf("URL(%q) err = %v, want UnsupportedTypeError", raw, err)
			}
		})
	}
}

func TestFile(t *testing.T) {
	tests := []struct {
		filename string
		want     Channel
	}{
		{"report.pdf", DocumentFile},
		{"Notes.DOCX", DocumentFile},
		{"clip.mp4", VideoFile},
		{"movie.MKV", VideoFile},
		{"voice.m4a", AudioFile},
		{"song.flac", AudioFile},
		{"photo.jpg", ImageFile},
		{"scan.tiff", ImageFile},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := File(tt.filename)
			if err != nil {
				t.Fatalf("File(%q) error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("File(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestFileUnsupported(t *testing.T) {
	_, err := File("clip.xyz")
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("File(clip.xyz) err = %v, want UnsupportedTypeError", err)
	}

	if _, err := File("noextension"); err == nil {
		t.Error("File(noextension) expected error, got nil")
	}
}

func TestIsUpload(t *testing.T) {
	if Webpage.IsUpload() {
		t.Error("Webpage.IsUpload() = true, want false")
	}
	if !AudioFile.IsUpload() {
		t.Error("AudioFile.IsUpload() = false, want true")
	}
}
