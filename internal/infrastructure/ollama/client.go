package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
)

// DefaultBaseURL is the address of a local Ollama daemon
const DefaultBaseURL = "http://localhost:11434"

// ClientConfig holds model settings for the Ollama client
type ClientConfig struct {
	Model       string
	Temperature float64
	NumCtx      int
	Timeout     time.Duration
}

// Message is a single chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ChatResponse is the non-streaming reply from POST /api/chat
type ChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// Client talks to a local Ollama server
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	numCtx      int
	logger      *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(baseURL string, config ClientConfig, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       config.Model,
		temperature: config.Temperature,
		numCtx:      config.NumCtx,
		logger:      logger,
	}
}

// Complete sends a single user prompt and returns the model's reply text.
// The model is asked for JSON output; the reply is returned unparsed.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	options := map[string]interface{}{"temperature": c.temperature}
	if c.numCtx > 0 {
		options["num_ctx"] = c.numCtx
	}

	payload, err := json.Marshal(ChatRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   false,
		Format:   "json",
		Options:  options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLLMFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrLLMFailure, err)
	}

	var chat ChatResponse
	decodeErr := json.Unmarshal(body, &chat)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && chat.Error != "" {
			return "", fmt.Errorf("%w: status %d: %s", domain.ErrLLMFailure, resp.StatusCode, chat.Error)
		}
		return "", fmt.Errorf("%w: status %d", domain.ErrLLMFailure, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrLLMFailure, decodeErr)
	}
	if chat.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrLLMFailure, chat.Error)
	}

	c.logger.Debug("ollama completion finished",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(chat.Message.Content)))

	return chat.Message.Content, nil
}
