package cmd

import (
	"github.com/fiffu/vitalwatch/app"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until interrupted.",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		fx.New(app.Options()).Run()
	},
}
