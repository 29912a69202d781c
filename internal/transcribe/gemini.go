// internal/transcribe/gemini.go
package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hskk-assessor/internal/common/config"
	apperrors "hskk-assessor/internal/common/errors"
)

const geminiPrompt = "Transcribe this Mandarin Chinese speech recording. " +
	"Return only the transcribed text with standard punctuation, nothing else."

var geminiMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// GeminiBackend transcribes through a multimodal Gemini model.
type GeminiBackend struct {
	cfg config.GeminiConfig
}

func NewGeminiBackend(cfg config.GeminiConfig) *GeminiBackend {
	return &GeminiBackend{cfg: cfg}
}

func (g *GeminiBackend) ID() string { return "gemini" }

func (g *GeminiBackend) Transcribe(ctx context.Context, audio []byte, filename string) (Transcript, error) {
	mimeType, ok := geminiMIMETypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		mimeType = "audio/wav"
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.cfg.APIKey))
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(g.ID(), err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.cfg.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(geminiPrompt),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(g.ID(), err)
	}

	text := firstText(resp)
	if text == "" {
		return Transcript{}, apperrors.NewTranscriptionBackendError(g.ID(),
			fmt.Errorf("empty response from model"))
	}

	return Transcript{Text: strings.TrimSpace(text)}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
