package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

// ErrEmptyMedia is returned when a video has no measurable duration
var ErrEmptyMedia = errors.New("media has no duration")

// FramePoint is one planned sample: where in time it falls and which
// source frame realizes it.
type FramePoint struct {
	Index      int     // position in the sample sequence
	Timestamp  float64 // seconds from the start
	FrameIndex int     // index of the source frame at that timestamp
}

// PlanFrames computes n sample points evenly spaced across the duration:
// point i sits at i*duration/n seconds, realized by frame
// floor(timestamp*fps), clamped to the last frame. Videos with fewer than
// n frames get one point per frame instead.
func PlanFrames(duration, fps float64, totalFrames, n int) ([]FramePoint, error) {
	if duration <= 0 {
		return nil, ErrEmptyMedia
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid frame count %d", n)
	}

	if totalFrames > 0 && totalFrames < n {
		n = totalFrames
	}

	interval := duration / float64(n)
	points := make([]FramePoint, 0, n)
	for i := 0; i < n; i++ {
		ts := float64(i) * interval
		frameIdx := int(math.Floor(ts * fps))
		if totalFrames > 0 && frameIdx > totalFrames-1 {
			frameIdx = totalFrames - 1
		}
		points = append(points, FramePoint{
			Index:      i,
			Timestamp:  ts,
			FrameIndex: frameIdx,
		})
	}

	return points, nil
}

// ExtractFrames renders each planned point of videoPath as a JPEG under
// outDir, named frame_000.jpg onward. Returns the written paths in plan
// order. Individual seek failures skip the frame rather than abort.
func ExtractFrames(ctx context.Context, videoPath, outDir string, plan []FramePoint) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	useExec := FFmpegAvailable()
	mountDirs := []string{filepath.Dir(videoPath), outDir}

	var written []string
	for _, p := range plan {
		outPath := filepath.Join(outDir, fmt.Sprintf("frame_%03d.jpg", p.Index))
		args := []string{
			"-ss", fmt.Sprintf("%.3f", p.Timestamp),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			"-y",
			outPath,
		}

		var err error
		if useExec {
			err = runFFmpegExec(ctx, args)
		} else {
			err = runFFmpegWasm(ctx, args, mountDirs...)
		}
		if err != nil {
			slog.Warn("frame extraction failed", "timestamp", p.Timestamp, "error", err)
			continue
		}

		if fi, statErr := os.Stat(outPath); statErr != nil || fi.Size() == 0 {
			slog.Warn("frame file empty", "path", outPath)
			continue
		}
		written = append(written, outPath)
	}

	slog.Info("extracted keyframes", "video", videoPath, "planned", len(plan), "written", len(written))
	return written, nil
}
