package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/service/outbox"
	"github.com/vladislavdragonenkov/mdm/internal/service/session"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Storage  *storageBundle
	Session  *session.Static
	Clock    domain.Clock
	Notifier domain.Notifier
	Logger   *log.Entry
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Storage:  storage,
		Session:  session.NewStatic(cfg.SessionUserID, cfg.SessionRole),
		Clock:    session.NewSystemClock(),
		Notifier: outbox.NewNotifier(storage.Outbox, logger.WithField("component", "outbox-notifier")),
		Logger:   logger,
	}, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	return d.Storage.Close()
}
