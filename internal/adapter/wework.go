package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
)

// Wework posts text messages to a WeCom (企业微信) group robot webhook.
// WeCom reports application errors via an errcode field on an HTTP 200
// response, so success requires errcode == 0.
type Wework struct {
	client     *resty.Client
	webhookURL string
}

func NewWework(webhookURL string, timeout time.Duration) *Wework {
	return &Wework{
		client:     newHTTPClient(timeout),
		webhookURL: webhookURL,
	}
}

type weworkPayload struct {
	MsgType string     `json:"msgtype"`
	Text    weworkText `json:"text"`
}

type weworkText struct {
	Content       string   `json:"content"`
	MentionedList []string `json:"mentioned_list,omitempty"`
}

type weworkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (w *Wework) Send(ctx context.Context, message string) Outcome {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(weworkPayload{MsgType: "text", Text: weworkText{Content: message}}).
		Post(w.webhookURL)
	if err != nil {
		return errorOutcome(err)
	}

	var parsed weworkResponse
	if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr != nil {
		return failureOutcome(resp.StatusCode(), resp.String())
	}

	if parsed.ErrCode == 0 {
		return successOutcome(resp.StatusCode(), parsed.ErrMsg)
	}
	return failureOutcome(resp.StatusCode(), parsed.ErrMsg)
}
