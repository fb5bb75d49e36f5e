package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiReasoner talks to the Gemini API. It is the only provider with
// native URI ingestion, which the direct_reference channel depends on.
type geminiReasoner struct {
	client *genai.Client
	model  string
}

func newGeminiReasoner(ctx context.Context, apiKey, model string) (*geminiReasoner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiReasoner{client: client, model: model}, nil
}

func (g *geminiReasoner) Name() string { return "gemini" }

func (g *geminiReasoner) Close() error { return g.client.Close() }

func (g *geminiReasoner) Analyze(ctx context.Context, p Payload) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.2)

	parts := []genai.Part{genai.Text(p.Prompt)}

	if p.FileURI != "" {
		parts = append(parts, genai.FileData{URI: p.FileURI})
	}

	for _, imgPath := range p.ImagePaths {
		data, err := os.ReadFile(imgPath)
		if err != nil {
			slog.Warn("skipping unreadable image", "path", imgPath, "error", err)
			continue
		}
		parts = append(parts, genai.ImageData(imageFormat(imgPath), data))
	}

	if p.AudioPath != "" {
		data, err := os.ReadFile(p.AudioPath)
		if err != nil {
			slog.Warn("skipping unreadable audio", "path", p.AudioPath, "error", err)
		} else {
			parts = append(parts, genai.Blob{MIMEType: "audio/wav", Data: data})
		}
	}

	slog.Info("querying gemini", "model", g.model, "images", len(p.ImagePaths), "audio", p.AudioPath != "", "uri", p.FileURI != "")

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &FailureError{Provider: "gemini", Err: err}
	}

	text := collectText(resp)
	if text == "" {
		return "", &FailureError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}

// collectText concatenates the text parts of the first candidate
func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// imageFormat maps a file extension to the genai image format token
func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
