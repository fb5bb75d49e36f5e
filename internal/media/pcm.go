package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// NormalizeAudioFile converts an uploaded audio file to 16 kHz mono WAV at
// outputPath. MP3 and FLAC decode in pure Go; WAV passes through; anything
// else goes through the ffmpeg chain (wasm first, then exec).
func NormalizeAudioFile(ctx context.Context, inputPath, outputPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(inputPath))

	// Already WAV: copy it into place so the session owns the artifact
	// after the upload's temp dir is removed
	if ext == ".wav" {
		if err := copyAudioFile(inputPath, outputPath); err != nil {
			return "", err
		}
		return outputPath, nil
	}

	var samples []float32
	var sampleRate int
	var err error

	switch ext {
	case ".mp3":
		samples, sampleRate, err = readMP3Samples(inputPath)
	case ".flac":
		samples, sampleRate, err = readFLACSamples(inputPath)
	default:
		return normalizeViaFFmpeg(ctx, inputPath, outputPath)
	}
	if err != nil {
		return "", err
	}

	if sampleRate != 16000 {
		samples = resampleTo16kHz(samples, sampleRate)
	}

	if err := writeWAV(outputPath, samples, 16000); err != nil {
		return "", err
	}
	return outputPath, nil
}

func copyAudioFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func normalizeViaFFmpeg(ctx context.Context, inputPath, outputPath string) (string, error) {
	args := audioExtractArgs(inputPath, outputPath)
	mounts := []string{filepath.Dir(inputPath), filepath.Dir(outputPath)}

	if err := runFFmpegWasm(ctx, args, mounts...); err == nil {
		return outputPath, nil
	}
	if !FFmpegAvailable() {
		return "", fmt.Errorf("cannot convert %s: no decoder available", inputPath)
	}
	if err := runFFmpegExec(ctx, args); err != nil {
		return "", err
	}
	return outputPath, nil
}

// readMP3Samples reads MP3 and returns mono float32 samples
func readMP3Samples(filePath string) ([]float32, int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, 0, err
	}

	sampleRate := decoder.SampleRate()
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, err
	}

	// The decoder emits stereo 16-bit little-endian PCM
	numSamples := len(data) / 4
	samples := make([]float32, numSamples)

	const maxInt16 = 32768.0
	for i := 0; i < numSamples; i++ {
		left := int16(data[i*4]) | int16(data[i*4+1])<<8
		right := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		mono := (int32(left) + int32(right)) / 2
		samples[i] = float32(mono) / maxInt16
	}

	return samples, sampleRate, nil
}

// readFLACSamples reads FLAC and returns mono float32 samples
func readFLACSamples(filePath string) ([]float32, int, error) {
	stream, err := flac.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	sampleRate := int(stream.Info.SampleRate)
	nChannels := int(stream.Info.NChannels)
	bitsPerSample := int(stream.Info.BitsPerSample)
	maxVal := float32(int64(1) << (bitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		nSamples := len(frame.Subframes[0].Samples)
		for i := 0; i < nSamples; i++ {
			var mono int64
			for ch := 0; ch < nChannels; ch++ {
				mono += int64(frame.Subframes[ch].Samples[i])
			}
			mono /= int64(nChannels)
			samples = append(samples, float32(mono)/maxVal)
		}
	}

	return samples, sampleRate, nil
}

// writeWAV writes float32 samples as 16-bit mono WAV
func writeWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	defer encoder.Close()

	intBuf := &audio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}

	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		intBuf.Data[i] = int(s * 32767)
	}

	return encoder.Write(intBuf)
}

// resampleTo16kHz resamples audio using linear interpolation
func resampleTo16kHz(samples []float32, srcRate int) []float32 {
	if srcRate == 16000 {
		return samples
	}

	ratio := float64(srcRate) / 16000.0
	newLen := int(float64(len(samples)) / ratio)
	resampled := make([]float32, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		if srcIdx+1 < len(samples) {
			resampled[i] = samples[srcIdx]*(1-frac) + samples[srcIdx+1]*frac
		} else if srcIdx < len(samples) {
			resampled[i] = samples[srcIdx]
		}
	}

	return resampled
}
