// Package pipeline drives one analysis end to end: classify the
// reference, acquire and normalize its content, persist a session, and
// consult the oracles.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vigil-app/vigil/internal/classify"
	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/document"
	"github.com/vigil-app/vigil/internal/extract"
	"github.com/vigil-app/vigil/internal/fetch"
	"github.com/vigil-app/vigil/internal/media"
	"github.com/vigil-app/vigil/internal/oracle"
	"github.com/vigil-app/vigil/internal/session"
	"github.com/vigil-app/vigil/internal/webpage"
)

// Result is the outcome of one analysis. SessionDir always points at the
// persisted session, even when the oracle failed.
type Result struct {
	SessionDir string
	Channel    classify.Channel
	Title      string
	Report     *oracle.Report
}

// Pipeline wires the acquisition stages to the oracle layer
type Pipeline struct {
	cfg      *config.Config
	reasoner oracle.Reasoner
	search   *oracle.SearchClient
	scraper  *webpage.Scraper
	client   *fetch.Client
}

// New assembles a pipeline from explicit dependencies. Tests inject fakes
// here; production code uses Build.
func New(cfg *config.Config, r oracle.Reasoner, s *oracle.SearchClient, sc *webpage.Scraper, client *fetch.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		reasoner: r,
		search:   s,
		scraper:  sc,
		client:   client,
	}
}

// Build constructs a production pipeline from configuration
func Build(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	reasoner, err := oracle.NewReasoner(ctx, cfg.Oracle)
	if err != nil {
		return nil, err
	}

	client := fetch.New(30 * time.Second)
	return New(
		cfg,
		reasoner,
		oracle.NewSearchClient(config.SerpAPIKey(), cfg.Oracle.SearchBaseURL),
		webpage.NewScraper(client, cfg.Scrape),
		client,
	), nil
}

// Close releases oracle resources
func (p *Pipeline) Close() error {
	return p.reasoner.Close()
}

// AnalyzeURL runs the full pipeline for a URL reference
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*Result, error) {
	channel, err := classify.URL(rawURL)
	if err != nil {
		return nil, err
	}

	slog.Info("analysis started", "url", rawURL, "channel", channel)

	switch channel {
	case classify.DirectReference:
		return p.analyzeDirect(ctx, rawURL)
	case classify.PlatformDownload:
		return p.analyzePlatform(ctx, rawURL)
	case classify.Webpage:
		return p.analyzeWebpage(ctx, rawURL)
	default:
		// URL pointing straight at a file: pull it down, then treat it
		// as an upload of that file
		return p.analyzeRemoteFile(ctx, rawURL, channel)
	}
}

// AnalyzeFile runs the full pipeline for an uploaded file
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	channel, err := classify.File(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	slog.Info("analysis started", "file", path, "channel", channel)
	return p.analyzeLocalFile(ctx, path, channel)
}

func (p *Pipeline) analyzeRemoteFile(ctx context.Context, rawURL string, channel classify.Channel) (*Result, error) {
	tmpDir, err := os.MkdirTemp("", "vigil-fetch-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	d := extract.NewDirect()
	acq, err := d.Download(ctx, rawURL, tmpDir)
	if err != nil {
		return nil, &AcquisitionError{Ref: rawURL, Err: err}
	}

	return p.analyzeLocalFile(ctx, acq.VideoPath, channel)
}

func (p *Pipeline) analyzeLocalFile(ctx context.Context, path string, channel classify.Channel) (*Result, error) {
	switch channel {
	case classify.VideoFile:
		return p.analyzeVideoFile(ctx, path)
	case classify.AudioFile:
		return p.analyzeAudioFile(ctx, path)
	case classify.DocumentFile:
		return p.analyzeDocumentFile(ctx, path)
	case classify.ImageFile:
		return p.analyzeImageFile(ctx, path)
	default:
		return nil, &classify.UnsupportedTypeError{Ref: path}
	}
}

// analyzeDirect hands the URL straight to the oracle; only Gemini can do
// this. Title metadata is best effort via yt-dlp.
func (p *Pipeline) analyzeDirect(ctx context.Context, rawURL string) (*Result, error) {
	title := ""
	if meta, err := extract.ProbeMetadata(ctx, rawURL); err == nil {
		title = meta.Title
	}

	sess, err := session.New(p.cfg.SessionsRoot, rawURL, string(classify.DirectReference), title)
	if err != nil {
		return nil, err
	}

	bundle := &MediaBundle{
		Channel: classify.DirectReference,
		Source:  rawURL,
		Title:   title,
	}
	if title == "" {
		bundle.Degrade("source metadata unavailable")
	}

	prompt := oracle.VideoPrompt(oracle.PromptData{Title: title})
	payload := oracle.Payload{Prompt: prompt, FileURI: rawURL}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

func (p *Pipeline) analyzePlatform(ctx context.Context, rawURL string) (*Result, error) {
	tmpDir, err := os.MkdirTemp("", "vigil-dl-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	d := extract.Match(rawURL)
	acq, err := d.Download(ctx, rawURL, tmpDir)
	if err != nil {
		return nil, &AcquisitionError{Ref: rawURL, Err: err}
	}

	sess, err := session.New(p.cfg.SessionsRoot, rawURL, string(classify.PlatformDownload), acq.Title)
	if err != nil {
		return nil, err
	}

	bundle := &MediaBundle{
		Channel:  classify.PlatformDownload,
		Source:   rawURL,
		Title:    acq.Title,
		Uploader: acq.Uploader,
		Duration: acq.Duration,
	}

	p.normalizeVideo(ctx, sess, bundle, acq.VideoPath, acq.CaptionPath)

	searchCtx := p.runSearch(ctx, sess, bundle.Title)

	prompt := oracle.VideoPrompt(oracle.PromptData{
		Title:         bundle.Title,
		Transcript:    bundle.Transcript(),
		FrameCount:    len(bundle.Frames),
		HasAudio:      bundle.HasAudioTrack(),
		SearchContext: searchCtx,
	})
	payload := oracle.Payload{
		Prompt:     prompt,
		ImagePaths: bundle.Frames,
	}
	if bundle.HasAudioTrack() {
		payload.AudioPath = bundle.Audio.WAVPath
	}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

// normalizeVideo probes, samples frames and resolves audio for a local
// video file. Every failure in here is a degradation, not an abort: a
// video with no frames and no audio still reaches the oracle with
// whatever survived.
func (p *Pipeline) normalizeVideo(ctx context.Context, sess *session.Session, bundle *MediaBundle, videoPath, captionPath string) {
	info, err := media.Probe(ctx, videoPath)
	if err != nil {
		bundle.Degrade(fmt.Sprintf("probe failed: %v", err))
	} else {
		if bundle.Duration == 0 {
			bundle.Duration = info.Duration
		}

		plan, planErr := media.PlanFrames(info.Duration, info.FPS, info.TotalFrames, p.cfg.NumFrames)
		if planErr != nil {
			bundle.Degrade(fmt.Sprintf("frame sampling skipped: %v", planErr))
		} else if framesDir, dirErr := sess.KeyframesDir(); dirErr == nil {
			frames, extErr := media.ExtractFrames(ctx, videoPath, framesDir, plan)
			if extErr != nil {
				bundle.Degrade(fmt.Sprintf("frame extraction failed: %v", extErr))
			}
			bundle.Frames = frames
			if len(frames) < len(plan) {
				bundle.Degrade(fmt.Sprintf("only %d of %d planned frames extracted", len(frames), len(plan)))
			}
		}
	}

	bundle.Audio = media.ExtractAudio(ctx, videoPath, captionPath, sess.Path("audio.wav"))
	switch bundle.Audio.Status {
	case media.AudioTranscript:
		if err := sess.WriteFile(session.CaptionsFile, []byte(bundle.Audio.Transcript)); err != nil {
			slog.Warn("could not persist captions", "error", err)
		}
	case media.AudioNone:
		bundle.Degrade("audio unavailable")
	}
}

func (p *Pipeline) analyzeWebpage(ctx context.Context, rawURL string) (*Result, error) {
	page, err := p.scraper.Scrape(ctx, rawURL)
	if err != nil {
		return nil, &AcquisitionError{Ref: rawURL, Err: err}
	}

	sess, err := session.New(p.cfg.SessionsRoot, rawURL, string(classify.Webpage), page.Title)
	if err != nil {
		return nil, err
	}

	bundle := &MediaBundle{
		Channel: classify.Webpage,
		Source:  rawURL,
		Title:   page.Title,
		Text:    page.Text,
	}
	for _, l := range page.Links {
		bundle.Links = append(bundle.Links, l.URL)
	}
	if page.Truncated {
		bundle.Degrade("page text truncated")
	}

	if err := sess.WriteFile(session.ExtractedTextFile, []byte(page.Text)); err != nil {
		slog.Warn("could not persist page text", "error", err)
	}

	searchCtx := p.runSearch(ctx, sess, searchQuery(page.Title, page.Text))

	prompt := oracle.WebpagePrompt(oracle.PromptData{
		Title:         page.Title,
		Source:        rawURL,
		Text:          page.Text,
		Links:         bundle.Links,
		SearchContext: searchCtx,
	})

	return p.finish(ctx, sess, bundle, prompt, oracle.Payload{Prompt: prompt})
}

func (p *Pipeline) analyzeVideoFile(ctx context.Context, path string) (*Result, error) {
	title := titleFromPath(path)

	sess, err := session.New(p.cfg.SessionsRoot, path, string(classify.VideoFile), title)
	if err != nil {
		return nil, err
	}

	bundle := &MediaBundle{
		Channel: classify.VideoFile,
		Source:  path,
		Title:   title,
	}
	p.normalizeVideo(ctx, sess, bundle, path, "")

	prompt := oracle.VideoPrompt(oracle.PromptData{
		Title:      title,
		Transcript: bundle.Transcript(),
		FrameCount: len(bundle.Frames),
		HasAudio:   bundle.HasAudioTrack(),
	})
	payload := oracle.Payload{Prompt: prompt, ImagePaths: bundle.Frames}
	if bundle.HasAudioTrack() {
		payload.AudioPath = bundle.Audio.WAVPath
	}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

func (p *Pipeline) analyzeAudioFile(ctx context.Context, path string) (*Result, error) {
	title := titleFromPath(path)

	sess, err := session.New(p.cfg.SessionsRoot, path, string(classify.AudioFile), title)
	if err != nil {
		return nil, err
	}

	wavPath, err := media.NormalizeAudioFile(ctx, path, sess.Path("audio.wav"))
	if err != nil {
		return nil, &AcquisitionError{Ref: path, Err: err}
	}

	bundle := &MediaBundle{
		Channel: classify.AudioFile,
		Source:  path,
		Title:   title,
		Audio:   &media.AudioResult{Status: media.AudioExtracted, Method: "upload", WAVPath: wavPath},
	}

	// The filename is the only claim context available up front; skip the
	// search when it is too short to be a meaningful query
	searchCtx := ""
	if len(title) > 3 {
		searchCtx = p.runSearch(ctx, sess, title)
	}

	prompt := oracle.AudioPrompt(oracle.PromptData{Title: title, HasAudio: true, SearchContext: searchCtx})
	payload := oracle.Payload{Prompt: prompt, AudioPath: wavPath}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

func (p *Pipeline) analyzeDocumentFile(ctx context.Context, path string) (*Result, error) {
	title := titleFromPath(path)

	sess, err := session.New(p.cfg.SessionsRoot, path, string(classify.DocumentFile), title)
	if err != nil {
		return nil, err
	}

	imagesDir, err := sess.ImagesDir()
	if err != nil {
		return nil, err
	}

	ext, err := document.Extract(path, imagesDir)
	if err != nil {
		return nil, &AcquisitionError{Ref: path, Err: err}
	}

	bundle := &MediaBundle{
		Channel:   classify.DocumentFile,
		Source:    path,
		Title:     title,
		Text:      ext.Text,
		Images:    ext.Images,
		PageCount: ext.PageCount,
	}

	if ext.Status == document.StatusExtracted {
		if err := sess.WriteFile(session.ExtractedTextFile, []byte(ext.Text)); err != nil {
			slog.Warn("could not persist document text", "error", err)
		}
	}

	prompt := oracle.DocumentPrompt(oracle.PromptData{
		Title:     title,
		Text:      ext.Text,
		PageCount: ext.PageCount,
	})
	payload := oracle.Payload{Prompt: prompt, ImagePaths: ext.Images}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

func (p *Pipeline) analyzeImageFile(ctx context.Context, path string) (*Result, error) {
	title := titleFromPath(path)

	sess, err := session.New(p.cfg.SessionsRoot, path, string(classify.ImageFile), title)
	if err != nil {
		return nil, err
	}

	imagesDir, err := sess.ImagesDir()
	if err != nil {
		return nil, err
	}

	// Copy the upload into the session so the artifact outlives temp files
	dest := filepath.Join(imagesDir, filepath.Base(path))
	if err := copyFile(path, dest); err != nil {
		return nil, &AcquisitionError{Ref: path, Err: err}
	}

	bundle := &MediaBundle{
		Channel: classify.ImageFile,
		Source:  path,
		Title:   title,
		Images:  []string{dest},
	}

	prompt := oracle.ImagePrompt(oracle.PromptData{Title: title})
	payload := oracle.Payload{Prompt: prompt, ImagePaths: []string{dest}}

	return p.finish(ctx, sess, bundle, prompt, payload)
}

// runSearch consults the search oracle and persists whatever came back.
// An empty query skips the search entirely.
func (p *Pipeline) runSearch(ctx context.Context, sess *session.Session, query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	results := p.search.Search(ctx, query)
	if err := sess.WriteJSON(session.SearchResultsFile, results); err != nil {
		slog.Warn("could not persist search results", "error", err)
	}
	if results.Error != "" {
		sess.Degrade("search unavailable: " + results.Error)
	}
	return results.Context()
}

// finish consults the reasoning oracle, persists every artifact and
// finalizes the session. The raw response is written before parsing is
// attempted. An oracle failure still yields a persisted Error report; the
// failure is returned alongside the result so callers see both.
func (p *Pipeline) finish(ctx context.Context, sess *session.Session, bundle *MediaBundle, prompt string, payload oracle.Payload) (*Result, error) {
	sess.Manifest.Title = bundle.Title
	sess.Manifest.Uploader = bundle.Uploader
	sess.Manifest.Duration = bundle.Duration
	sess.Manifest.FrameCount = len(bundle.Frames)
	sess.Manifest.Audio = bundle.Audio
	sess.Manifest.Degradations = append(sess.Manifest.Degradations, bundle.Degradations...)

	if err := sess.WriteFile(session.OraclePromptFile, []byte(prompt)); err != nil {
		slog.Warn("could not persist prompt", "error", err)
	}

	raw, oracleErr := p.reasoner.Analyze(ctx, payload)
	if writeErr := sess.WriteFile(session.OracleRawFile, []byte(raw)); writeErr != nil {
		slog.Warn("could not persist raw response", "error", writeErr)
	}

	var report *oracle.Report
	if oracleErr != nil {
		report = &oracle.Report{
			RiskLevel: oracle.RiskError,
			Summary:   oracleErr.Error(),
			Raw:       raw,
		}
	} else {
		report = oracle.ParseReport(raw)
	}

	if err := sess.WriteJSON(session.OracleJSONFile, report); err != nil {
		slog.Warn("could not persist report", "error", err)
	}

	sess.Manifest.RiskLevel = string(report.RiskLevel)
	if err := sess.Finalize(); err != nil {
		slog.Warn("could not finalize session", "error", err)
	}

	result := &Result{
		SessionDir: sess.Dir,
		Channel:    bundle.Channel,
		Title:      bundle.Title,
		Report:     report,
	}

	slog.Info("analysis complete",
		"session", sess.Dir,
		"risk", report.RiskLevel,
		"degradations", len(sess.Manifest.Degradations))

	return result, oracleErr
}

// searchQuery prefers the title; pages without one fall back to the first
// significant words of the body
func searchQuery(title, text string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}

	words := strings.Fields(text)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
