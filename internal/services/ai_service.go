package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"asset-report/internal/config"
	"asset-report/internal/workflow"

	openai "github.com/sashabaranov/go-openai"
)

// zeroTemperature stands in for 0. go-openai tags Temperature omitempty, so
// a literal 0 is dropped and the provider applies its own default instead.
const zeroTemperature float32 = 1e-6

func wireTemperature(t float64) float32 {
	if t <= 0 {
		return zeroTemperature
	}
	return float32(t)
}

// AIService is the chat completion provider used by the report workflow.
// It talks to any OpenAI-compatible endpoint; the API key comes with each
// request so users can bring their own.
type AIService struct {
	config config.OpenAIConfig
}

// NewAIService creates a new AI service (no API key needed at initialization)
func NewAIService(cfg config.OpenAIConfig) *AIService {
	return &AIService{config: cfg}
}

// Complete runs one chat completion, retrying timeouts, rate limits and
// server errors with exponential backoff. Once attempts run out the error
// wraps workflow.ErrProviderTransient.
func (s *AIService) Complete(ctx context.Context, req workflow.ChatRequest) (string, error) {
	if req.APIKey == "" {
		return "", workflow.ErrMissingCredential
	}

	model := req.Model
	if model == "" {
		model = s.config.Model
	}

	clientConfig := openai.DefaultConfig(req.APIKey)
	if s.config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(s.config.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(clientConfig)

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: wireTemperature(req.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if s.config.MaxTokens > 0 {
		chatReq.MaxTokens = s.config.MaxTokens
	}

	attempts := s.config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := s.config.Backoff

	for attempt := 1; ; attempt++ {
		content, err := s.completeOnce(ctx, client, chatReq)
		if err == nil {
			return content, nil
		}
		if !isTransient(err) {
			return "", fmt.Errorf("%s completion failed: %w", req.Purpose, err)
		}
		if attempt >= attempts {
			return "", fmt.Errorf("%w: %s completion gave up after %d attempts: %v", workflow.ErrProviderTransient, req.Purpose, attempt, err)
		}

		log.Printf("WARNING: %s completion attempt %d/%d failed, retrying in %s: %v", req.Purpose, attempt, attempts, backoff, err)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", workflow.ErrProviderTransient, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (s *AIService) completeOnce(ctx context.Context, client *openai.Client, req openai.ChatCompletionRequest) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion content (finish reason %q)", resp.Choices[0].FinishReason)
	}
	return content, nil
}

// isTransient reports whether a failed call is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
