package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hts-life/presswatch/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.TelegramConfig{
		BotToken: "test-token",
		ChatID:   "6580000530",
		BaseURL:  srv.URL,
	})
}

func TestSendMessage_Success(t *testing.T) {
	var gotPath, gotChatID, gotText string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChatID = r.URL.Query().Get("chat_id")
		gotText = r.URL.Query().Get("text")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	err := client.SendMessage(context.Background(), "maintenance due soon")
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "6580000530", gotChatID)
	assert.Equal(t, "maintenance due soon", gotText)
}

func TestSendMessage_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessage_OKFalseDespite200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error_code":420,"description":"flood control"}`))
	})

	err := client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=420")
}
