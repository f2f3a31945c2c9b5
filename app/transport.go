package app

import (
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewTransport is the round tripper shared by the outbound senders.
func NewTransport(lc fx.Lifecycle, log *zap.Logger) http.RoundTripper {
	return &transport{http.DefaultTransport, log}
}

type transport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (tpt *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := tpt.base.RoundTrip(req)

	log := tpt.log.Sugar().With("method", req.Method, "host", req.URL.Host, "elapsed", time.Since(start))
	if err != nil {
		log.Warnw("Outbound request failed", "err", err)
		return nil, err
	}
	log.Debugw("Outbound request", "status", resp.StatusCode)
	return resp, nil
}
