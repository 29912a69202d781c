// internal/transcribe/whisper.go
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"hskk-assessor/internal/common/config"
	apperrors "hskk-assessor/internal/common/errors"
	commonhttp "hskk-assessor/internal/common/http"
)

// WhisperBackend speaks the OpenAI audio transcription API, which several
// self-hosted engines also expose.
type WhisperBackend struct {
	cfg    config.WhisperConfig
	client *commonhttp.Client
}

func NewWhisperBackend(cfg config.WhisperConfig) *WhisperBackend {
	return &WhisperBackend{
		cfg:    cfg,
		client: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (w *WhisperBackend) ID() string { return "whisper" }

type whisperResponse struct {
	Text string `json:"text"`
}

func (w *WhisperBackend) Transcribe(ctx context.Context, audio []byte, filename string) (Transcript, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}
	if _, err := part.Write(audio); err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}
	_ = writer.WriteField("model", w.cfg.Model)
	_ = writer.WriteField("language", "zh")
	_ = writer.WriteField("temperature", "0")
	if err := writer.Close(); err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}

	url := w.cfg.BaseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(),
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(excerpt)))
	}

	var body whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(w.ID(), err)
	}

	return Transcript{Text: body.Text}, nil
}
