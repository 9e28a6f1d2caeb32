package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatClient is the slice of the AI client the extractor needs. Satisfied by
// *openai.Client.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds extractor settings.
type Config struct {
	Model      string
	MaxPages   int
	RetryDelay time.Duration
}

// Extractor sends one document at a time to the AI service and returns the
// raw text payload. PDF pages are rasterized and attached as images, the
// way the vision endpoint expects them.
type Extractor struct {
	client     ChatClient
	model      string
	maxPages   int
	retryDelay time.Duration
	logger     *zap.Logger

	// render is swapped out in tests to avoid needing real PDF fixtures.
	render func(data []byte, maxPages int, logger *zap.Logger) ([][]byte, error)
}

// NewExtractor creates a new document extractor.
func NewExtractor(client ChatClient, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	return &Extractor{
		client:     client,
		model:      cfg.Model,
		maxPages:   cfg.MaxPages,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
		render:     renderPDF,
	}
}

// Extract sends the document with the fixed field instruction and returns
// the raw response text.
//
// Rate limited calls (HTTP 429) are retried after a fixed delay for as long
// as the service keeps rate limiting, so a batch eventually drains instead
// of failing on quota pressure. Cancel the context to bound the wait. Any
// other failure propagates to the caller.
func (e *Extractor) Extract(ctx context.Context, doc []byte) (string, error) {
	images, err := e.render(doc, e.maxPages, e.logger)
	if err != nil {
		return "", err
	}

	req := e.buildRequest(images)

	for {
		resp, err := e.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if isRateLimited(err) {
				e.logger.Warn("AI service rate limited, backing off",
					zap.Duration("delay", e.retryDelay))
				if err := e.wait(ctx); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("AI service call failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		return resp.Choices[0].Message.Content, nil
	}
}

func (e *Extractor) buildRequest(images [][]byte) openai.ChatCompletionRequest {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: extractionPrompt,
		},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	return openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

func (e *Extractor) wait(ctx context.Context) error {
	t := time.NewTimer(e.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRateLimited reports whether err is an HTTP 429 from the AI service.
// 429 is the only retryable 4xx.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	// Some gateways surface the status only in the message text.
	return strings.Contains(err.Error(), "429")
}
