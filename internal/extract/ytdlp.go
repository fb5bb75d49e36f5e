package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path/filepath"
)

// ytdlpDownloader shells out to yt-dlp, which handles every platform the
// classifier routes to platform_download. Registered as the fallback so
// unknown video hosts get a best-effort attempt too.
type ytdlpDownloader struct{}

func (d *ytdlpDownloader) Name() string { return "yt-dlp" }

func (d *ytdlpDownloader) Match(u *url.URL) bool { return true }

// ytdlpInfo is the subset of yt-dlp's JSON output we care about
type ytdlpInfo struct {
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
	Ext      string  `json:"ext"`
}

// Available reports whether yt-dlp is installed and in PATH
func Available() bool {
	_, err := exec.LookPath("yt-dlp")
	return err == nil
}

func (d *ytdlpDownloader) Download(ctx context.Context, rawURL, destDir string) (*Acquisition, error) {
	if !Available() {
		return nil, fmt.Errorf("yt-dlp not found in PATH")
	}

	outputTemplate := filepath.Join(destDir, "video.%(ext)s")

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"-f", "best[height<=720]/best",
		"--no-playlist",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en",
		"--sub-format", "vtt",
		"--print-json",
		"-o", outputTemplate,
		rawURL,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Info("downloading with yt-dlp", "url", rawURL)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, truncateOutput(stderr.String()))
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata unreadable: %w", err)
	}

	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}
	videoPath := filepath.Join(destDir, "video."+ext)

	acq := &Acquisition{
		VideoPath: videoPath,
		Title:     info.Title,
		Uploader:  info.Uploader,
		Duration:  info.Duration,
	}

	// yt-dlp names the sidecar video.en.vtt; auto-subs may land as
	// video.en-orig.vtt on some platforms.
	for _, pattern := range []string{"video.en.vtt", "video.*.vtt"} {
		matches, _ := filepath.Glob(filepath.Join(destDir, pattern))
		if len(matches) > 0 {
			acq.CaptionPath = matches[0]
			break
		}
	}

	slog.Info("yt-dlp download complete",
		"title", info.Title,
		"duration", info.Duration,
		"captions", acq.CaptionPath != "")

	return acq, nil
}

// ProbeMetadata fetches title/uploader/duration for a URL without
// downloading anything. Used on the direct_reference channel, where the
// oracle ingests the URL itself but the session still wants a title.
func ProbeMetadata(ctx context.Context, rawURL string) (*Acquisition, error) {
	if !Available() {
		return nil, fmt.Errorf("yt-dlp not found in PATH")
	}

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--dump-json",
		"--skip-download",
		"--no-playlist",
		rawURL,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata probe failed: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata unreadable: %w", err)
	}

	return &Acquisition{
		Title:    info.Title,
		Uploader: info.Uploader,
		Duration: info.Duration,
	}, nil
}

func truncateOutput(s string) string {
	const max = 500
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}

func init() {
	RegisterFallback(&ytdlpDownloader{})
}
