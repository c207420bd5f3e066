// Package adapter normalizes heterogeneous third-party messaging
// platforms behind one send contract so the dispatcher can treat all
// destinations uniformly.
package adapter

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	// maxResponseLen bounds the response/error text persisted with a
	// delivery record.
	maxResponseLen = 500

	defaultSendTimeout = 10 * time.Second
)

// Adapter delivers one message to one configured destination.
type Adapter interface {
	Send(ctx context.Context, message string) Outcome
}

// Outcome reports a single send attempt. StatusCode is the transport
// status when the attempt reached the network and 0 otherwise
// (misconfiguration, serialization, connection error). Response holds
// the raw platform body or the error description, truncated to
// maxResponseLen.
type Outcome struct {
	Success    bool
	StatusCode int
	Response   string
}

func successOutcome(statusCode int, response string) Outcome {
	return Outcome{Success: true, StatusCode: statusCode, Response: truncate(response)}
}

func failureOutcome(statusCode int, response string) Outcome {
	return Outcome{Success: false, StatusCode: statusCode, Response: truncate(response)}
}

func errorOutcome(err error) Outcome {
	if err == nil {
		return Outcome{StatusCode: 0, Response: "unknown send error"}
	}
	return Outcome{StatusCode: 0, Response: truncate(err.Error())}
}

// truncate caps the persisted text at maxResponseLen bytes, backing
// off to a rune boundary so multi-byte platform messages stay valid
// UTF-8.
func truncate(s string) string {
	if len(s) <= maxResponseLen {
		return s
	}
	cut := maxResponseLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func newHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	return client
}
