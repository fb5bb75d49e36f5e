package pipeline

import (
	"fmt"

	"github.com/vigil-app/vigil/internal/classify"
	"github.com/vigil-app/vigil/internal/media"
)

// MediaBundle is the single normalized artifact the oracle layer consumes,
// whatever channel produced it. Paths are local files inside or below the
// session directory.
type MediaBundle struct {
	Channel  classify.Channel
	Source   string
	Title    string
	Uploader string

	Duration float64
	Frames   []string
	Audio    *media.AudioResult

	Text      string
	PageCount int
	Images    []string
	Links     []string

	// Degradations are quality losses that did not stop the analysis
	Degradations []string
}

// Degrade records a non-fatal quality loss
func (b *MediaBundle) Degrade(reason string) {
	b.Degradations = append(b.Degradations, reason)
}

// Transcript returns the text form of the audio, when one exists
func (b *MediaBundle) Transcript() string {
	if b.Audio == nil {
		return ""
	}
	return b.Audio.Transcript
}

// HasAudioTrack reports whether an extracted WAV travels with the bundle
func (b *MediaBundle) HasAudioTrack() bool {
	return b.Audio != nil && b.Audio.WAVPath != ""
}

// AcquisitionError wraps failures to obtain or read the referenced
// content: downloads, scrapes, unreadable uploads.
type AcquisitionError struct {
	Ref string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition of %s failed: %v", e.Ref, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }
