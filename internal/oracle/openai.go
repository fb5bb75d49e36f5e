package oracle

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o"

// openaiReasoner is the alternate provider. Chat completions take images
// as data URLs; raw audio and remote URIs are not supported, so videos on
// this provider lean on the caption transcript embedded in the prompt.
type openaiReasoner struct {
	client *openai.Client
	model  string
}

func newOpenAIReasoner(apiKey, model string) *openaiReasoner {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiReasoner{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *openaiReasoner) Name() string { return "openai" }

func (o *openaiReasoner) Close() error { return nil }

func (o *openaiReasoner) Analyze(ctx context.Context, p Payload) (string, error) {
	if p.FileURI != "" {
		return "", &FailureError{Provider: "openai", Err: fmt.Errorf("native URI ingestion is not supported, use the gemini provider for direct references")}
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: p.Prompt},
	}

	for _, imgPath := range p.ImagePaths {
		data, err := os.ReadFile(imgPath)
		if err != nil {
			slog.Warn("skipping unreadable image", "path", imgPath, "error", err)
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(imgPath, data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	slog.Info("querying openai", "model", o.model, "images", len(p.ImagePaths))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", &FailureError{Provider: "openai", Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &FailureError{Provider: "openai", Err: fmt.Errorf("empty response")}
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(path string, data []byte) string {
	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".webp":
		mime = "image/webp"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
