package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Telegram sends messages through the Telegram Bot API. The connection
// descriptor is "botToken:chatId", split on the last colon because bot
// tokens themselves contain a colon.
type Telegram struct {
	client   *resty.Client
	botToken string
	chatID   string
}

func NewTelegram(descriptor string, timeout time.Duration) *Telegram {
	t := &Telegram{client: newHTTPClient(timeout)}

	if idx := strings.LastIndex(descriptor, ":"); idx > 0 && idx < len(descriptor)-1 {
		t.botToken = descriptor[:idx]
		t.chatID = descriptor[idx+1:]
	} else {
		t.botToken = descriptor
	}

	return t
}

type telegramPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, message string) Outcome {
	if t.chatID == "" {
		return failureOutcome(0, "invalid telegram descriptor, expected botToken:chatId")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(telegramPayload{ChatID: t.chatID, Text: message, ParseMode: "HTML"}).
		Post(endpoint)
	if err != nil {
		return errorOutcome(err)
	}

	var parsed telegramResponse
	if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr != nil {
		return failureOutcome(resp.StatusCode(), resp.String())
	}

	if parsed.OK {
		return successOutcome(resp.StatusCode(), parsed.Description)
	}
	return failureOutcome(resp.StatusCode(), parsed.Description)
}
