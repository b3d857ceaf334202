package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultProviderURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel       = "gemini-2.0-flash"
	DefaultTimeout     = 60 * time.Second
)

// Provider translates text from English into the named language. Placeholder
// tokens in text must come back unchanged.
type Provider interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

type ProviderConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// ChatProvider talks to any OpenAI-compatible chat completions endpoint
// (Gemini's compatibility layer, Ollama, vLLM).
type ChatProvider struct {
	url        string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewChatProvider(cfg ProviderConfig) *ChatProvider {
	if cfg.URL == "" {
		cfg.URL = DefaultProviderURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	url := strings.TrimSuffix(cfg.URL, "/")
	if !strings.HasSuffix(url, "/chat/completions") {
		url += "/chat/completions"
	}

	return &ChatProvider{
		url:        url,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func buildPrompt(text, language string) string {
	return fmt.Sprintf(`Translate the following text from English to %s.
DO NOT translate the CODE_BLOCK_NNNN or INLINE_CODE_NNNN placeholders - leave those exactly as they are.
Preserve all formatting, technical terms, and placeholder tokens.
Reply with the translation only.
Here's the text to translate:

%s`, language, text)
}

func (p *ChatProvider) Translate(ctx context.Context, text, language string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(text, language)}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("translation provider error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("translation provider error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyTranslation
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
