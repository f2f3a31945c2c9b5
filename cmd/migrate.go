package cmd

import (
	"github.com/fiffu/vitalwatch/app"
	"github.com/fiffu/vitalwatch/config"
	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := models.Migrate(db); err != nil {
			log.Sugar().Errorw("Migration failed", "err", err)
			return err
		}
		log.Info("Migrations applied")
		return nil
	},
}

// bootstrap loads what one-shot commands need without starting the fx application.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.NewConfig(log)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := app.OpenDatabase(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
