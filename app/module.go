package app

import (
	"net/http"

	"github.com/fiffu/vitalwatch/config"
	"github.com/fiffu/vitalwatch/lib"
	"github.com/fiffu/vitalwatch/senders"
	"go.uber.org/fx"
)

// CoreOptions provides everything below the HTTP surface.
func CoreOptions() fx.Option {
	return fx.Options(
		fx.Provide(config.NewConfig),
		fx.Provide(NewLogger),

		fx.Provide(NewTransport),
		fx.Provide(senders.NewSenderRegistry),

		fx.Provide(NewDatabase),
		fx.Provide(lib.NewService),
	)
}

// Options is the full server application.
func Options() fx.Option {
	return fx.Options(
		CoreOptions(),
		fx.Provide(NewAPI),

		fx.Invoke(func(*http.Server) {}),
	)
}
