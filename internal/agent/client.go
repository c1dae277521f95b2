// Package agent provides the query capability used for AI-directed
// commands: a thin chat-completion adapter over a local Ollama server.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// ChunkFunc receives incremental response text as it is produced.
type ChunkFunc func(chunk string)

// Querier is the only capability the workflow executor needs from the AI
// backend. Ask must be safe to call repeatedly and must return the full
// response text even when chunks were also streamed.
type Querier interface {
	Ask(ctx context.Context, text string, onChunk ChunkFunc) (string, error)
}

// Config holds backend settings for an agent client.
type Config struct {
	Provider string // Backend provider; only "ollama" is built in
	Model    string // Model name, e.g. "qwen3:8b"
	BaseURL  string // Server base URL; defaults to DefaultBaseURL
	Language string // Response language hint ("en", "es")
}

// Client is a reusable chat client for one agent instance.
// It follows the http.Client pattern: create once, use many times.
// One call may be in flight at a time; concurrent Ask calls serialize.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu sync.Mutex // One in-flight query per agent instance
}

// NewClient creates a Client for the given backend configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "qwen3:8b"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Generation can be slow on local hardware; the context
			// carries any tighter deadline.
			Timeout: 10 * time.Minute,
		},
	}
}

// chatRequest is the Ollama /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatChunk is one NDJSON line of a streaming chat response.
type chatChunk struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// Ask sends the text as a single-turn chat and streams the response.
// Chunks are forwarded to onChunk as they arrive; the accumulated full
// text is returned once the backend reports completion.
func (c *Client) Ask(ctx context.Context, text string, onChunk ChunkFunc) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := []chatMessage{}
	if prompt := c.systemPrompt(); prompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request returned status %d", resp.StatusCode)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return full.String(), fmt.Errorf("failed to decode chat chunk: %w", err)
		}
		if chunk.Error != "" {
			return full.String(), fmt.Errorf("backend error: %s", chunk.Error)
		}

		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			if onChunk != nil {
				onChunk(chunk.Message.Content)
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("failed to read chat stream: %w", err)
	}

	return full.String(), nil
}

// Ping verifies the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend is not reachable at %s: %w", c.cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

// systemPrompt returns the standing instruction for this client.
func (c *Client) systemPrompt() string {
	prompt := "You are AtlasAI, an assistant that helps developers run and explain project workflows. Be concise and practical."
	if c.cfg.Language == "es" {
		prompt += " Responde en español."
	}
	return prompt
}
