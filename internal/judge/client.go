// internal/judge/client.go
package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hskk-assessor/internal/common/config"
	apperrors "hskk-assessor/internal/common/errors"
	commonhttp "hskk-assessor/internal/common/http"
)

// Caller issues one chat completion and returns the raw response content.
type Caller interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient speaks the OpenAI chat completion API with a forced JSON
// response format.
type OpenAIClient struct {
	cfg    config.JudgeConfig
	client *commonhttp.Client
}

func NewOpenAIClient(cfg config.JudgeConfig) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		// No client timeout, the request context carries the deadline.
		client: commonhttp.NewClient(0),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(c.cfg.Timeout))
	defer cancel()

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewJudgmentTimeoutError()
			}
		}

		content, err := c.once(ctx, reqBody)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewJudgmentTimeoutError()
		}
	}

	return "", apperrors.NewJudgmentFailedError(lastErr)
}

func (c *OpenAIClient) once(ctx context.Context, reqBody chatRequest) (string, error) {
	var parsed chatResponse
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	if err := c.client.PostJSON(ctx, c.cfg.BaseURL+"/chat/completions", headers, reqBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}
