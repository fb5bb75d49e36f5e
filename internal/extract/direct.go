package extract

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vigil-app/vigil/internal/fetch"
)

// directDownloader handles URLs that point straight at a media file.
// No metadata beyond the filename is available, so the title falls back
// to the URL's basename.
type directDownloader struct {
	client *fetch.Client
}

// NewDirect creates a downloader for direct file URLs
func NewDirect() *directDownloader {
	return &directDownloader{client: fetch.New(5 * time.Minute)}
}

func (d *directDownloader) Name() string { return "direct" }

func (d *directDownloader) Match(u *url.URL) bool {
	return path.Ext(u.Path) != ""
}

func (d *directDownloader) Download(ctx context.Context, rawURL, destDir string) (*Acquisition, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	base := path.Base(u.Path)
	outputPath := filepath.Join(destDir, SanitizeFilename(base))

	if err := d.client.DownloadFile(ctx, rawURL, outputPath); err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(base, path.Ext(base))
	return &Acquisition{
		VideoPath: outputPath,
		Title:     title,
	}, nil
}
