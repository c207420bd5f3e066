package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const webhookSource = "notify-manager"

// Webhook posts a generic JSON envelope to any HTTP endpoint for
// platforms without a dedicated adapter.
type Webhook struct {
	client     *resty.Client
	webhookURL string
	now        func() time.Time
}

func NewWebhook(webhookURL string, timeout time.Duration) *Webhook {
	return &Webhook{
		client:     newHTTPClient(timeout),
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

type webhookEnvelope struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

func (w *Webhook) Send(ctx context.Context, message string) Outcome {
	envelope := webhookEnvelope{
		Message:   message,
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Source:    webhookSource,
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(envelope).
		Post(w.webhookURL)
	if err != nil {
		return errorOutcome(err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		response := resp.String()
		if response == "" {
			response = "OK"
		}
		return successOutcome(resp.StatusCode(), response)
	default:
		return failureOutcome(resp.StatusCode(), resp.String())
	}
}
