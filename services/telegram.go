package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramService posts messages through the Telegram Bot API
type TelegramService struct {
	baseURL    string
	httpClient *http.Client
}

func NewTelegramService(baseURL string) *TelegramService {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &TelegramService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts Markdown text to a chat
func (s *TelegramService) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	if botToken == "" {
		return fmt.Errorf("telegram bot token: %w", ErrNotConfigured)
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat id is required")
	}

	body, err := json.Marshal(telegramSendRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// the request URL embeds the token, so do not surface the url.Error text
		return fmt.Errorf("%w: telegram request failed", ErrProvider)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var result telegramResponse
	_ = json.Unmarshal(raw, &result)

	if resp.StatusCode != http.StatusOK || !result.OK {
		desc := result.Description
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: telegram status %d: %s", ErrProvider, resp.StatusCode, desc)
	}
	return nil
}
