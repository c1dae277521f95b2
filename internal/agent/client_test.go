package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer fakes the Ollama streaming chat endpoint.
func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func streamChunks(w http.ResponseWriter, contents ...string) {
	for i, content := range contents {
		chunk := map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    i == len(contents)-1,
		}
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "%s\n", data)
	}
}

func TestAsk_StreamsAndAccumulates(t *testing.T) {
	var gotReq chatRequest
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		streamChunks(w, "Hello", ", ", "world")
	})

	client := NewClient(Config{Model: "test-model", BaseURL: server.URL})

	var chunks []string
	full, err := client.Ask(context.Background(), "greet me", func(chunk string) {
		chunks = append(chunks, chunk)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello, world", full)
	assert.Equal(t, []string{"Hello", ", ", "world"}, chunks)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.True(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "greet me", gotReq.Messages[1].Content)
}

func TestAsk_SpanishSystemPrompt(t *testing.T) {
	var gotReq chatRequest
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		streamChunks(w, "hola")
	})

	client := NewClient(Config{Model: "m", BaseURL: server.URL, Language: "es"})

	_, err := client.Ask(context.Background(), "hola", nil)

	require.NoError(t, err)
	assert.Contains(t, gotReq.Messages[0].Content, "español")
}

func TestAsk_BackendErrorChunk(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model not found"}`)
	})

	client := NewClient(Config{Model: "m", BaseURL: server.URL})

	_, err := client.Ask(context.Background(), "q", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestAsk_HTTPErrorStatus(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient(Config{Model: "m", BaseURL: server.URL})

	_, err := client.Ask(context.Background(), "q", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAsk_NilCallback(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		streamChunks(w, "quiet")
	})

	client := NewClient(Config{Model: "m", BaseURL: server.URL})

	full, err := client.Ask(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Equal(t, "quiet", full)
}

func TestPing(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/version" {
			fmt.Fprintln(w, `{"version":"0.6.0"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	client := NewClient(Config{Model: "m", BaseURL: server.URL})
	assert.NoError(t, client.Ping(context.Background()))

	down := NewClient(Config{Model: "m", BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, down.Ping(context.Background()))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, DefaultBaseURL, client.cfg.BaseURL)
	assert.NotEmpty(t, client.cfg.Model)
}
