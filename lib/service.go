package lib

import (
	"time"

	"github.com/fiffu/vitalwatch/config"
	"github.com/fiffu/vitalwatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry

	*accounts
	*pairing
	*endpoints
	*vitals
	*dispatcher
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, db *gorm.DB, senders senders.Registry) *Service {
	return newService(cfg, log, db, senders, time.Now)
}

func newService(cfg *config.Config, log *zap.Logger, db *gorm.DB, senders senders.Registry, now func() time.Time) *Service {
	endpoints := &endpoints{log, db, now}
	dispatcher := &dispatcher{log, endpoints, senders, cfg.Delivery.Timeout, now}
	return &Service{
		cfg, log, db, senders,
		&accounts{log, db},
		&pairing{log, db},
		endpoints,
		&vitals{log, db, dispatcher, now},
		dispatcher,
	}
}

// SupportsPlatform reports whether alerts can be delivered to endpoints with this platform hint.
func (svc *Service) SupportsPlatform(platform string) bool {
	return svc.senders.Supports(platform)
}
