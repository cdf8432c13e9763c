package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const apiKeyHeader = "x-goog-api-key"

// ErrNoCandidates возвращается, когда модель не вернула ни одного варианта ответа
var ErrNoCandidates = errors.New("gemini: no candidates in response")

// GenerationConfig — параметры генерации generateContent
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig используется AI-помощником
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 1024,
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// APIError — ответ Gemini с кодом, отличным от 200
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: api error status=%d", e.StatusCode)
}

// Client вызывает REST метод models/{model}:generateContent
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	config     GenerationConfig
	httpClient *http.Client
}

// NewClient создает клиента. Пустой ключ недопустим.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		config:     DefaultGenerationConfig,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GenerateContent отправляет один текстовый промпт и возвращает текст первого кандидата
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.config,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	// Ключ только в заголовке: URL попадает в текст ошибок net/http
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Gemini.GenerateContent] API error status=%d body=%.200s", resp.StatusCode, string(body))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		if parsed.PromptFeedback.BlockReason != "" {
			log.Printf("[Gemini.GenerateContent] Промпт заблокирован: %s", parsed.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
