package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", "", "", 0)
	assert.Error(t, err)
}

func TestClient_GenerateContent_Success(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery, "Ключ не должен передаваться в URL")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Merhaba! 😊  "}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("secret-key", server.URL, "test-model", time.Second)
	require.NoError(t, err)

	// Act
	text, err := client.GenerateContent(context.Background(), "2+2 kaç?")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Merhaba! 😊", text)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "2+2 kaç?", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.7, captured.GenerationConfig.Temperature)
	assert.Equal(t, 40, captured.GenerationConfig.TopK)
	assert.Equal(t, 0.95, captured.GenerationConfig.TopP)
	assert.Equal(t, 1024, captured.GenerationConfig.MaxOutputTokens)
}

func TestClient_GenerateContent_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	client, err := NewClient("k", server.URL, "m", time.Second)
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestClient_GenerateContent_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	client, err := NewClient("k", server.URL, "m", time.Second)
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestClient_GenerateContent_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := NewClient("SUPERSECRETKEY", server.URL, "m", 50*time.Millisecond)
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi")

	require.Error(t, err, "Ожидалась ошибка тайм-аута")
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY", "Ключ API не должен попадать в текст ошибки")
}

func TestClient_GenerateContent_ConnectionErrorHidesKey(t *testing.T) {
	// Arrange: адрес закрытого сервера дает connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client, err := NewClient("SUPERSECRETKEY", addr, "m", time.Second)
	require.NoError(t, err)

	// Act
	_, err = client.GenerateContent(context.Background(), "hi")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generateContent", "Ошибка должна указывать на запрос")
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY", "Ключ API не должен попадать в текст ошибки")
}
