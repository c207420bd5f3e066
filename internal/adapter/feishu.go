package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Feishu posts text messages to a Feishu group webhook.
type Feishu struct {
	client     *resty.Client
	webhookURL string
}

func NewFeishu(webhookURL string, timeout time.Duration) *Feishu {
	return &Feishu{
		client:     newHTTPClient(timeout),
		webhookURL: webhookURL,
	}
}

type feishuPayload struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

func (f *Feishu) Send(ctx context.Context, message string) Outcome {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(feishuPayload{MsgType: "text", Content: feishuContent{Text: message}}).
		Post(f.webhookURL)
	if err != nil {
		return errorOutcome(err)
	}

	if resp.StatusCode() == http.StatusOK {
		return successOutcome(resp.StatusCode(), resp.String())
	}
	return failureOutcome(resp.StatusCode(), resp.String())
}
