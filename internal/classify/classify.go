package classify

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Channel is the acquisition channel for a reference. It is derived exactly
// once, when the reference enters the pipeline; everything downstream
// switches on the Channel instead of re-inspecting the raw string.
type Channel string

const (
	// DirectReference is a URL the reasoning oracle ingests natively by URI.
	DirectReference Channel = "direct_reference"
	// PlatformDownload is a social/video platform URL that must be
	// downloaded before analysis.
	PlatformDownload Channel = "platform_download"
	// Webpage is any other http(s) URL.
	Webpage Channel = "webpage"

	VideoFile    Channel = "video_file"
	AudioFile    Channel = "audio_file"
	DocumentFile Channel = "document_file"
	ImageFile    Channel = "image_file"
)

// IsUpload reports whether the channel originates from a local file rather
// than a URL.
func (c Channel) IsUpload() bool {
	switch c {
	case VideoFile, AudioFile, DocumentFile, ImageFile:
		return true
	}
	return false
}

// UnsupportedTypeError is returned when neither the URL host nor the file
// extension maps to a known channel.
type UnsupportedTypeError struct {
	Ref string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported reference type: %s", e.Ref)
}

// directReferenceHosts are hosts the oracle accepts as a file URI without
// any local acquisition.
var directReferenceHosts = map[string]bool{
	"youtube.com":          true,
	"m.youtube.com":        true,
	"youtu.be":             true,
	"youtube-nocookie.com": true,
}

// platformHosts require a download step before the media can be analyzed.
var platformHosts = map[string]bool{
	"instagram.com":   true,
	"facebook.com":    true,
	"fb.watch":        true,
	"tiktok.com":      true,
	"twitter.com":     true,
	"x.com":           true,
	"vimeo.com":       true,
	"dailymotion.com": true,
	"twitch.tv":       true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".webm": true, ".flv": true, ".wmv": true, ".m4v": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true,
	".ogg": true, ".flac": true, ".wma": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".rtf": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true,
}

// URL classifies a reference URL into its channel.
func URL(rawURL string) (Channel, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &UnsupportedTypeError{Ref: rawURL}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if directReferenceHosts[host] {
		return DirectReference, nil
	}
	if platformHosts[host] {
		return PlatformDownload, nil
	}

	// A URL pointing straight at a media or document file behaves like an
	// upload of that file.
	if ch, ok := byExtension(path.Ext(u.Path)); ok {
		return ch, nil
	}

	return Webpage, nil
}

// File classifies an uploaded filename by extension.
func File(filename string) (Channel, error) {
	if ch, ok := byExtension(path.Ext(filename)); ok {
		return ch, nil
	}
	return "", &UnsupportedTypeError{Ref: filename}
}

func byExtension(ext string) (Channel, bool) {
	ext = strings.ToLower(ext)
	switch {
	case videoExtensions[ext]:
		return VideoFile, true
	case audioExtensions[ext]:
		return AudioFile, true
	case documentExtensions[ext]:
		return DocumentFile, true
	case imageExtensions[ext]:
		return ImageFile, true
	}
	return "", false
}
