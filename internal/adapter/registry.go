package adapter

import (
	"strings"
	"time"

	"github.com/umutkarci/notify-manager/internal/domain"
)

type constructor func(destination domain.Destination, timeout time.Duration) Adapter

// Registry maps a platform type tag to the adapter able to handle it.
// New platforms are added here without touching dispatch logic.
type Registry struct {
	constructors map[string]constructor
	timeout      time.Duration
}

func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Registry{
		timeout: timeout,
		constructors: map[string]constructor{
			"feishu": func(d domain.Destination, t time.Duration) Adapter {
				return NewFeishu(d.Endpoint, t)
			},
			"flomo": func(d domain.Destination, t time.Duration) Adapter {
				return NewFlomo(d.Endpoint, t)
			},
			"dingtalk": func(d domain.Destination, t time.Duration) Adapter {
				return NewDingTalk(d.Endpoint, d.Secret, t)
			},
			"wework": func(d domain.Destination, t time.Duration) Adapter {
				return NewWework(d.Endpoint, t)
			},
			"telegram": func(d domain.Destination, t time.Duration) Adapter {
				return NewTelegram(d.Endpoint, t)
			},
			"email": func(d domain.Destination, t time.Duration) Adapter {
				return NewEmail(d.Endpoint)
			},
			"webhook": func(d domain.Destination, t time.Duration) Adapter {
				return NewWebhook(d.Endpoint, t)
			},
		},
	}
}

// Resolve returns the adapter for the destination's platform type, or
// nil for an unknown type. Callers treat nil as "skip this
// destination", not as an error.
func (r *Registry) Resolve(destination domain.Destination) Adapter {
	if r == nil {
		return nil
	}

	build, ok := r.constructors[strings.ToLower(strings.TrimSpace(destination.Platform.String()))]
	if !ok {
		return nil
	}
	return build(destination, r.timeout)
}
