package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Flomo posts notes to a flomo incoming webhook.
type Flomo struct {
	client     *resty.Client
	webhookURL string
}

func NewFlomo(webhookURL string, timeout time.Duration) *Flomo {
	return &Flomo{
		client:     newHTTPClient(timeout),
		webhookURL: webhookURL,
	}
}

func (f *Flomo) Send(ctx context.Context, message string) Outcome {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"content": message}).
		Post(f.webhookURL)
	if err != nil {
		return errorOutcome(err)
	}

	if resp.StatusCode() == http.StatusOK {
		return successOutcome(resp.StatusCode(), resp.String())
	}
	return failureOutcome(resp.StatusCode(), resp.String())
}
