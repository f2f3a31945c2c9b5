package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/vitalwatch/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Sender delivers one alert to an opaque delivery token and returns the provider's message id.
// Any error is a delivery failure; callers do not interpret provider error codes.
type Sender interface {
	Send(ctx context.Context, token, title, body string) (string, error)
}

// Registry maps an endpoint's platform hint to the sender that can reach it.
type Registry map[string]Sender

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformEmail   = "email"
)

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	push := &expoSender{base}
	return map[string]Sender{
		PlatformAndroid: push,
		PlatformIOS:     push,
		PlatformEmail:   &mailgunSender{base},
	}
}

func (r Registry) Supports(platform string) bool {
	_, ok := r[platform]
	return ok
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
