package adapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestTruncateBoundsResponse(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", maxResponseLen+100)
	if got := truncate(long); len(got) != maxResponseLen {
		t.Fatalf("truncate() len = %d, want %d", len(got), maxResponseLen)
	}

	short := "short"
	if got := truncate(short); got != short {
		t.Fatalf("truncate() = %q, want %q", got, short)
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	// Place a three-byte rune across the cut so a byte slice would
	// split it.
	long := strings.Repeat("x", maxResponseLen-1) + strings.Repeat("消息发送失败", 30)
	got := truncate(long)
	if len(got) > maxResponseLen {
		t.Fatalf("truncate() len = %d, want <= %d", len(got), maxResponseLen)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncate() = %q, produced invalid UTF-8", got)
	}
	if len(got) != maxResponseLen-1 {
		t.Fatalf("truncate() len = %d, want %d (backed off to rune start)", len(got), maxResponseLen-1)
	}
}

func TestFeishuSend(t *testing.T) {
	t.Parallel()

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	t.Cleanup(server.Close)

	outcome := NewFeishu(server.URL, time.Second).Send(context.Background(), "hello")
	if !outcome.Success {
		t.Fatalf("Send() success = false, response = %q", outcome.Response)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Fatalf("Send() status = %d, want 200", outcome.StatusCode)
	}
	if !strings.Contains(gotBody, `"msg_type":"text"`) || !strings.Contains(gotBody, `"text":"hello"`) {
		t.Fatalf("request body = %s, want feishu text payload", gotBody)
	}
}

func TestFeishuSendHTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream error"))
	}))
	t.Cleanup(server.Close)

	outcome := NewFeishu(server.URL, time.Second).Send(context.Background(), "hello")
	if outcome.Success {
		t.Fatal("Send() success = true, want failure on non-200")
	}
	if outcome.StatusCode != http.StatusBadGateway {
		t.Fatalf("Send() status = %d, want 502", outcome.StatusCode)
	}
}

func TestFeishuSendNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	outcome := NewFeishu(server.URL, time.Second).Send(context.Background(), "hello")
	if outcome.Success {
		t.Fatal("Send() success = true, want failure")
	}
	if outcome.StatusCode != 0 {
		t.Fatalf("Send() status = %d, want 0 for network error", outcome.StatusCode)
	}
	if outcome.Response == "" {
		t.Fatal("Send() response should carry the error description")
	}
}

func TestFlomoSend(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	outcome := NewFlomo(server.URL, time.Second).Send(context.Background(), "note")
	if !outcome.Success {
		t.Fatalf("Send() success = false, response = %q", outcome.Response)
	}
}

func TestWeworkSendErrcode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantSuccess bool
	}{
		{name: "zero errcode", body: `{"errcode":0,"errmsg":"ok"}`, wantSuccess: true},
		{name: "nonzero errcode on http 200", body: `{"errcode":93000,"errmsg":"invalid webhook url"}`, wantSuccess: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			outcome := NewWework(server.URL, time.Second).Send(context.Background(), "hi")
			if outcome.Success != tt.wantSuccess {
				t.Fatalf("Send() success = %v, want %v (response %q)", outcome.Success, tt.wantSuccess, outcome.Response)
			}
			if outcome.StatusCode != http.StatusOK {
				t.Fatalf("Send() status = %d, want 200", outcome.StatusCode)
			}
		})
	}
}

func TestWebhookSend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantResp    string
	}{
		{name: "200", status: http.StatusOK, body: "received", wantSuccess: true, wantResp: "received"},
		{name: "204 empty body becomes OK", status: http.StatusNoContent, wantSuccess: true, wantResp: "OK"},
		{name: "500", status: http.StatusInternalServerError, body: "boom", wantSuccess: false, wantResp: "boom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			t.Cleanup(server.Close)

			outcome := NewWebhook(server.URL, time.Second).Send(context.Background(), "payload")
			if outcome.Success != tt.wantSuccess {
				t.Fatalf("Send() success = %v, want %v", outcome.Success, tt.wantSuccess)
			}
			if outcome.Response != tt.wantResp {
				t.Fatalf("Send() response = %q, want %q", outcome.Response, tt.wantResp)
			}
		})
	}
}

func TestWebhookEnvelopeShape(t *testing.T) {
	t.Parallel()

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	w := NewWebhook(server.URL, time.Second)
	w.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	outcome := w.Send(context.Background(), "ping")
	if !outcome.Success {
		t.Fatalf("Send() success = false, response = %q", outcome.Response)
	}

	for _, want := range []string{`"message":"ping"`, `"timestamp":"2025-06-01T12:00:00Z"`, `"source":"notify-manager"`} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("request body = %s, missing %s", gotBody, want)
		}
	}
}
