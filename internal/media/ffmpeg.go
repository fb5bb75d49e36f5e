package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"
)

// FFmpegAvailable checks if ffmpeg is installed and available in PATH
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// FFprobeAvailable checks if ffprobe is installed and available in PATH
func FFprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// runFFmpegExec runs the host ffmpeg binary
func runFFmpegExec(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("[ffmpeg] ERROR: %v", err)
		log.Printf("[ffmpeg] output:\n%s", tail(output, 1000))
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// runFFmpegWasm runs the embedded wasm ffmpeg with the given directories
// mounted into its filesystem. Every path in args must live under one of
// the mounted directories.
func runFFmpegWasm(ctx context.Context, args []string, mountDirs ...string) error {
	cfg := wazero.NewFSConfig()
	seen := map[string]bool{}
	for _, dir := range mountDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		cfg = cfg.WithDirMount(abs, abs)
	}

	wargs := wasm.Args{
		Stderr: io.Discard,
		Stdout: io.Discard,
		Args:   args,
		Config: func(mc wazero.ModuleConfig) wazero.ModuleConfig {
			return mc.WithFSConfig(cfg)
		},
	}

	rc, err := ffmpreg.Ffmpeg(ctx, wargs)
	if err != nil {
		return fmt.Errorf("embedded ffmpeg failed: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("embedded ffmpeg exited with code %d", rc)
	}
	return nil
}

// runFFprobeWasm runs the embedded wasm ffprobe and returns its stdout
func runFFprobeWasm(ctx context.Context, args []string, mountDir string) ([]byte, error) {
	abs, err := filepath.Abs(mountDir)
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	wargs := wasm.Args{
		Stderr: io.Discard,
		Stdout: &stdout,
		Args:   args,
		Config: func(mc wazero.ModuleConfig) wazero.ModuleConfig {
			return mc.WithFSConfig(wazero.NewFSConfig().WithDirMount(abs, abs))
		},
	}

	rc, err := ffmpreg.Ffprobe(ctx, wargs)
	if err != nil {
		return nil, fmt.Errorf("embedded ffprobe failed: %w", err)
	}
	if rc != 0 {
		return nil, fmt.Errorf("embedded ffprobe exited with code %d", rc)
	}
	return stdout.Bytes(), nil
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}
