// Package session owns the on-disk layout of one analysis: a timestamped
// directory holding the manifest, oracle artifacts, keyframes and
// extracted content.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-app/vigil/internal/extract"
	"github.com/vigil-app/vigil/internal/media"
)

// Well-known file and directory names inside a session
const (
	MetadataFile      = "metadata.json"
	OraclePromptFile  = "oracle_prompt.txt"
	OracleRawFile     = "oracle_response_raw.txt"
	OracleJSONFile    = "oracle_response.json"
	SearchResultsFile = "search_results.json"
	ExtractedTextFile = "extracted_text.txt"
	CaptionsFile      = "captions.txt"
	ReadmeFile        = "README.md"
	KeyframesDirName  = "keyframes"
	ImagesDirName     = "embedded_images"
)

// slugMaxRunes caps the title part of the directory name
const slugMaxRunes = 50

// Manifest records what an analysis session contains and how it went
type Manifest struct {
	Source    string    `json:"source"`
	Channel   string    `json:"channel"`
	Title     string    `json:"title,omitempty"`
	Uploader  string    `json:"uploader,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Duration     float64            `json:"duration_seconds,omitempty"`
	FrameCount   int                `json:"frame_count,omitempty"`
	Audio        *media.AudioResult `json:"audio,omitempty"`
	RiskLevel    string             `json:"risk_level,omitempty"`
	Degradations []string           `json:"degradations,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Session is one analysis directory
type Session struct {
	Dir      string
	Manifest Manifest
}

// New creates a session directory {YYYYMMDD_HHMMSS}_{slug}_{token} under
// root. The random token keeps two same-titled sessions created within
// one second from colliding.
func New(root, source, channel, title string) (*Session, error) {
	now := time.Now()

	slug := extract.SanitizeFilename(title)
	if runes := []rune(slug); len(runes) > slugMaxRunes {
		slug = string(runes[:slugMaxRunes])
	}
	slug = strings.TrimSpace(slug)

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]

	name := now.Format("20060102_150405")
	if slug != "" {
		name += "_" + slug
	}
	name += "_" + token

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s := &Session{
		Dir: dir,
		Manifest: Manifest{
			Source:    source,
			Channel:   channel,
			Title:     title,
			CreatedAt: now,
		},
	}

	if err := s.SaveManifest(); err != nil {
		return nil, err
	}

	slog.Info("created session", "dir", dir, "channel", channel)
	return s, nil
}

// Load reopens an existing session from its directory
func Load(dir string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	s := &Session{Dir: dir}
	if err := json.Unmarshal(data, &s.Manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return s, nil
}

// Path returns the absolute path of a file inside the session
func (s *Session) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// KeyframesDir returns the keyframe directory, creating it on demand
func (s *Session) KeyframesDir() (string, error) {
	dir := filepath.Join(s.Dir, KeyframesDirName)
	return dir, os.MkdirAll(dir, 0755)
}

// ImagesDir returns the embedded-images directory, creating it on demand
func (s *Session) ImagesDir() (string, error) {
	dir := filepath.Join(s.Dir, ImagesDirName)
	return dir, os.MkdirAll(dir, 0755)
}

// WriteFile writes a file into the session directory
func (s *Session) WriteFile(name string, data []byte) error {
	return os.WriteFile(s.Path(name), data, 0644)
}

// WriteJSON writes v as indented JSON into the session directory
func (s *Session) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.WriteFile(name, data)
}

// Degrade records a non-fatal quality loss on the manifest
func (s *Session) Degrade(reason string) {
	s.Manifest.Degradations = append(s.Manifest.Degradations, reason)
	slog.Warn("analysis degraded", "session", filepath.Base(s.Dir), "reason", reason)
}

// SaveManifest persists the current manifest state
func (s *Session) SaveManifest() error {
	return s.WriteJSON(MetadataFile, &s.Manifest)
}

// Finalize stamps the completion time, persists the manifest one last
// time and drops a README describing the directory contents
func (s *Session) Finalize() error {
	now := time.Now()
	s.Manifest.CompletedAt = &now

	if err := s.SaveManifest(); err != nil {
		return err
	}
	return s.writeReadme()
}

func (s *Session) writeReadme() error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis Session\n\n")
	fmt.Fprintf(&b, "- Source: %s\n", s.Manifest.Source)
	fmt.Fprintf(&b, "- Channel: %s\n", s.Manifest.Channel)
	if s.Manifest.Title != "" {
		fmt.Fprintf(&b, "- Title: %s\n", s.Manifest.Title)
	}
	fmt.Fprintf(&b, "- Created: %s\n", s.Manifest.CreatedAt.Format(time.RFC3339))
	if s.Manifest.RiskLevel != "" {
		fmt.Fprintf(&b, "- Risk level: %s\n", s.Manifest.RiskLevel)
	}
	if len(s.Manifest.Degradations) > 0 {
		fmt.Fprintf(&b, "- Degradations: %s\n", strings.Join(s.Manifest.Degradations, "; "))
	}

	b.WriteString("\n## Files\n\n")
	b.WriteString("- `metadata.json` — session manifest\n")
	b.WriteString("- `oracle_prompt.txt` — prompt sent to the reasoning oracle\n")
	b.WriteString("- `oracle_response_raw.txt` — unparsed oracle output\n")
	b.WriteString("- `oracle_response.json` — parsed analysis report\n")

	if _, err := os.Stat(s.Path(SearchResultsFile)); err == nil {
		b.WriteString("- `search_results.json` — web search context\n")
	}
	if _, err := os.Stat(s.Path(CaptionsFile)); err == nil {
		b.WriteString("- `captions.txt` — caption transcript\n")
	}
	if _, err := os.Stat(s.Path(ExtractedTextFile)); err == nil {
		b.WriteString("- `extracted_text.txt` — extracted document/page text\n")
	}
	if _, err := os.Stat(filepath.Join(s.Dir, KeyframesDirName)); err == nil {
		b.WriteString("- `keyframes/` — sampled video frames\n")
	}
	if _, err := os.Stat(filepath.Join(s.Dir, ImagesDirName)); err == nil {
		b.WriteString("- `embedded_images/` — document images or page renders\n")
	}

	return s.WriteFile(ReadmeFile, []byte(b.String()))
}
