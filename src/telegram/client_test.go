package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		Token:   "test-token",
		APIBase: serverURL,
		Timeout: 5 * time.Second,
		Logger:  testLogger(),
	})
}

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		assert.Equal(t, "60", r.URL.Query().Get("timeout"))

		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":6,"message":{"message_id":1,"from":{"id":100},"chat":{"id":100},"text":"hello"}},
			{"update_id":7,"message":{"message_id":2,"from":{"id":200},"chat":{"id":200},"text":"/start"}}
		]}`))
	}))
	defer server.Close()

	updates, err := newTestClient(server.URL).GetUpdates(context.Background(), 5, 60)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(6), updates[0].UpdateID)
	assert.Equal(t, "hello", updates[0].Message.Text)
	assert.Equal(t, int64(100), updates[0].Message.From.ID)
	assert.Equal(t, "/start", updates[1].Message.Text)
}

func TestGetUpdatesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetUpdates(context.Background(), 0, 60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestSendMessage(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendMessage(context.Background(), 42, "hi there")
	require.NoError(t, err)
	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "hi there", got["text"])
}

func TestSendMessageTruncates(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendMessage(context.Background(), 1, strings.Repeat("x", 5000))
	require.NoError(t, err)
	assert.Len(t, got["text"], maxMessageLen)
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
