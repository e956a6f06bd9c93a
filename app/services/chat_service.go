package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shashiranjanraj/campusmart/pkg/http"
)

// ChatCompleter produces an assistant reply for one user message.
type ChatCompleter interface {
	Complete(ctx context.Context, message string) (string, error)
}

// ChatService answers buyer support questions through a generative-text
// provider. Conversations are stateless: each message stands alone.
type ChatService struct {
	completer ChatCompleter
}

func NewChatService(completer ChatCompleter) *ChatService {
	return &ChatService{completer: completer}
}

// Reply validates the message and forwards it to the provider. Provider
// failures surface as ErrUpstream so the handler can answer 500 without
// leaking provider detail.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrValidation)
	}
	reply, err := s.completer.Complete(ctx, message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reply, nil
}

// generateContent wire shapes for the generative-language REST API.
type genaiRequest struct {
	Contents []genaiContent `json:"contents"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiPart struct {
	Text string `json:"text"`
}

type genaiResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenAICompleter calls the generative-language generateContent endpoint.
type GenAICompleter struct {
	BaseURL string
	Model   string
	APIKey  string
}

func (c *GenAICompleter) Complete(ctx context.Context, message string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.BaseURL, c.Model, url.QueryEscape(c.APIKey))

	resp, err := http.Post(endpoint).
		Body(genaiRequest{Contents: []genaiContent{{Parts: []genaiPart{{Text: message}}}}}).
		Timeout(30 * time.Second).
		Retry(2, time.Second).
		WithContext(ctx).
		Send()
	if err != nil {
		return "", fmt.Errorf("genai: generate content: %w", err)
	}

	var payload genaiResponse
	if err := resp.JSON(&payload); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if !resp.OK() {
		if payload.Error != nil {
			return "", fmt.Errorf("genai: %s", payload.Error.Message)
		}
		return "", fmt.Errorf("genai: status %d", resp.StatusCode)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("genai: empty completion")
	}
	return payload.Candidates[0].Content.Parts[0].Text, nil
}
