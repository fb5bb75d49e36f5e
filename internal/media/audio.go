package media

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// AudioStatus describes how the audio side of a video was resolved
type AudioStatus string

const (
	// AudioTranscript means a caption transcript stands in for the audio
	AudioTranscript AudioStatus = "transcript"
	// AudioExtracted means a WAV track was pulled from the media
	AudioExtracted AudioStatus = "extracted"
	// AudioNone means every strategy failed; analysis proceeds without audio
	AudioNone AudioStatus = "none"
)

// AudioResult is the outcome of the audio fallback chain. Method names the
// strategy that produced it ("captions", "embedded-ffmpeg", "ffmpeg", or
// "unavailable").
type AudioResult struct {
	Status     AudioStatus `json:"status"`
	Method     string      `json:"method"`
	Transcript string      `json:"transcript,omitempty"`
	WAVPath    string      `json:"wav_path,omitempty"`
}

// audioInput carries everything a strategy may need
type audioInput struct {
	mediaPath   string
	captionPath string
	outputPath  string
}

// audioStrategy is one rung of the fallback ladder
type audioStrategy struct {
	name string
	run  func(ctx context.Context, in audioInput) (*AudioResult, error)
}

// ffmpegTimeout bounds a single extraction attempt
const ffmpegTimeout = 60 * time.Second

// audioStrategies are tried in order; the first success wins
var audioStrategies = []audioStrategy{
	{name: "captions", run: audioFromCaptions},
	{name: "embedded-ffmpeg", run: audioViaWasm},
	{name: "ffmpeg", run: audioViaExec},
}

// ExtractAudio resolves the audio side of mediaPath by walking the
// strategy chain: caption transcript first, then in-process ffmpeg, then
// host ffmpeg. It never fails; when every strategy errors the result is
// AudioNone and the caller records a degradation.
func ExtractAudio(ctx context.Context, mediaPath, captionPath, outputPath string) *AudioResult {
	in := audioInput{
		mediaPath:   mediaPath,
		captionPath: captionPath,
		outputPath:  outputPath,
	}

	for _, s := range audioStrategies {
		res, err := s.run(ctx, in)
		if err != nil {
			slog.Debug("audio strategy failed", "strategy", s.name, "error", err)
			continue
		}
		res.Method = s.name
		slog.Info("audio resolved", "strategy", s.name, "status", res.Status)
		return res
	}

	slog.Warn("audio unavailable", "media", mediaPath)
	return &AudioResult{Status: AudioNone, Method: "unavailable"}
}

func audioFromCaptions(_ context.Context, in audioInput) (*AudioResult, error) {
	if in.captionPath == "" {
		return nil, fmt.Errorf("no caption sidecar")
	}

	transcript, err := ParseVTTFile(in.captionPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("caption file %s is empty", in.captionPath)
	}

	return &AudioResult{Status: AudioTranscript, Transcript: transcript}, nil
}

func audioViaWasm(ctx context.Context, in audioInput) (*AudioResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	args := audioExtractArgs(in.mediaPath, in.outputPath)
	mounts := []string{filepath.Dir(in.mediaPath), filepath.Dir(in.outputPath)}
	if err := runFFmpegWasm(ctx, args, mounts...); err != nil {
		return nil, err
	}

	return &AudioResult{Status: AudioExtracted, WAVPath: in.outputPath}, nil
}

func audioViaExec(ctx context.Context, in audioInput) (*AudioResult, error) {
	if !FFmpegAvailable() {
		return nil, fmt.Errorf("ffmpeg not found in PATH")
	}

	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	if err := runFFmpegExec(ctx, audioExtractArgs(in.mediaPath, in.outputPath)); err != nil {
		return nil, err
	}

	return &AudioResult{Status: AudioExtracted, WAVPath: in.outputPath}, nil
}

// audioExtractArgs strips the video stream and normalizes the audio track
// to 16 kHz mono PCM, the layout the reasoning oracle accepts
func audioExtractArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		output,
	}
}
