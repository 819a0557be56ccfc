package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hts-life/presswatch/internal/config"
)

// Client exposes the Telegram Bot API operations used by the application.
type Client interface {
	SendMessage(ctx context.Context, text string) error
}

// APIClient is a resty-backed implementation of Client. The bot token rides
// in the URL path per the Bot API convention, so it must never be logged.
type APIClient struct {
	httpClient *resty.Client
	chatID     string
}

var _ Client = (*APIClient)(nil)

// NewClient builds a Telegram API client using the provided configuration values.
func NewClient(cfg config.TelegramConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/bot%s", base, cfg.BotToken)).
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		chatID:     cfg.ChatID,
	}
}

// apiResponse mirrors the Bot API envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage delivers text to the configured chat. Success requires both an
// HTTP 200 and ok=true in the response body.
func (c *APIClient) SendMessage(ctx context.Context, text string) error {
	result := new(apiResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chat_id": c.chatID,
			"text":    text,
		}).
		SetResult(result).
		SetError(result).
		Get("/sendMessage")
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest || !result.OK {
		code := resp.StatusCode()
		if result.ErrorCode != 0 {
			code = result.ErrorCode
		}
		return fmt.Errorf("telegram api error: code=%d, description=%s", code, result.Description)
	}

	return nil
}
