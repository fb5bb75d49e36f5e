package media

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ProbeInfo describes the video stream of a media file
type ProbeInfo struct {
	Duration    float64 // seconds
	FPS         float64
	TotalFrames int
}

var probeArgs = []string{
	"-v", "error",
	"-select_streams", "v:0",
	"-show_entries", "stream=avg_frame_rate,nb_frames",
	"-show_entries", "format=duration",
	"-of", "default=noprint_wrappers=1",
}

// Probe reads duration, frame rate and frame count from a media file.
// It prefers the host ffprobe and falls back to the embedded wasm build.
func Probe(ctx context.Context, path string) (*ProbeInfo, error) {
	args := append(append([]string{}, probeArgs...), path)

	var output []byte
	var err error
	if FFprobeAvailable() {
		cmd := exec.CommandContext(ctx, "ffprobe", args...)
		output, err = cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("ffprobe failed: %w", err)
		}
	} else {
		output, err = runFFprobeWasm(ctx, args, filepath.Dir(path))
		if err != nil {
			return nil, err
		}
	}

	return parseProbeOutput(string(output))
}

// parseProbeOutput parses ffprobe default-format key=value lines
func parseProbeOutput(out string) (*ProbeInfo, error) {
	info := &ProbeInfo{}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found || value == "N/A" {
			continue
		}

		switch key {
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		case "avg_frame_rate":
			info.FPS = parseFrameRate(value)
		case "nb_frames":
			info.TotalFrames, _ = strconv.Atoi(value)
		}
	}

	if info.Duration <= 0 {
		return info, nil
	}

	// Many containers omit nb_frames; derive it from the rate
	if info.TotalFrames == 0 && info.FPS > 0 {
		info.TotalFrames = int(math.Floor(info.Duration * info.FPS))
	}

	return info, nil
}

// parseFrameRate parses ffprobe's rational rate format, e.g. "30000/1001"
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}

	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
