package adapter

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DingTalk posts text messages to a DingTalk group robot webhook.
// Robots configured with a shared secret require each request URL to
// carry a timestamp and an HMAC signature; robots without a secret are
// called unsigned.
type DingTalk struct {
	client     *resty.Client
	webhookURL string
	secret     string
	now        func() time.Time
}

func NewDingTalk(webhookURL string, secret *string, timeout time.Duration) *DingTalk {
	d := &DingTalk{
		client:     newHTTPClient(timeout),
		webhookURL: webhookURL,
		now:        time.Now,
	}
	if secret != nil {
		d.secret = *secret
	}
	return d
}

type dingTalkPayload struct {
	MsgType string       `json:"msgtype"`
	Text    dingTalkText `json:"text"`
	At      *dingTalkAt  `json:"at,omitempty"`
}

type dingTalkText struct {
	Content string `json:"content"`
}

type dingTalkAt struct {
	AtMobiles []string `json:"atMobiles"`
	IsAtAll   bool     `json:"isAtAll"`
}

type dingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (d *DingTalk) Send(ctx context.Context, message string) Outcome {
	return d.send(ctx, dingTalkPayload{MsgType: "text", Text: dingTalkText{Content: message}})
}

// SendWithMentions sends a text message that @-mentions the given
// mobile numbers, or everyone when atAll is set.
func (d *DingTalk) SendWithMentions(ctx context.Context, message string, atMobiles []string, atAll bool) Outcome {
	payload := dingTalkPayload{MsgType: "text", Text: dingTalkText{Content: message}}
	if len(atMobiles) > 0 || atAll {
		payload.At = &dingTalkAt{AtMobiles: atMobiles, IsAtAll: atAll}
	}
	return d.send(ctx, payload)
}

func (d *DingTalk) send(ctx context.Context, payload dingTalkPayload) Outcome {
	target, err := d.signedURL()
	if err != nil {
		return errorOutcome(err)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(target)
	if err != nil {
		return errorOutcome(err)
	}

	var parsed dingTalkResponse
	if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr != nil {
		return failureOutcome(resp.StatusCode(), resp.String())
	}

	if parsed.ErrCode == 0 {
		return successOutcome(resp.StatusCode(), parsed.ErrMsg)
	}
	return failureOutcome(resp.StatusCode(), parsed.ErrMsg)
}

// signedURL appends timestamp and sign query parameters when a secret
// is configured; without a secret the webhook URL is used as-is. The
// signature is already percent-encoded, so it is appended verbatim.
func (d *DingTalk) signedURL() (string, error) {
	if d.secret == "" {
		return d.webhookURL, nil
	}

	parsed, err := url.Parse(d.webhookURL)
	if err != nil {
		return "", fmt.Errorf("invalid dingtalk webhook url: %w", err)
	}

	timestamp := strconv.FormatInt(d.now().UnixMilli(), 10)
	sign := Sign(timestamp, d.secret)

	separator := "?"
	if parsed.RawQuery != "" {
		separator = "&"
	}

	return fmt.Sprintf("%s%stimestamp=%s&sign=%s", d.webhookURL, separator, timestamp, sign), nil
}

// Sign computes the DingTalk robot signature: HMAC-SHA256 over
// "{timestamp}\n{secret}" keyed with the secret, base64-encoded, then
// percent-encoded for use as a query parameter.
func Sign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "\n" + secret))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
