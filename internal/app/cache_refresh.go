package app

import (
	"context"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/masterdata"
	"github.com/vladislavdragonenkov/mdm/internal/messaging/kafka"
)

// newCacheRefreshHandler строит обработчик топика событий: уведомление
// об изменении справочника, адресованное текущему пользователю,
// вызывает синхронный refresh наблюдаемого списка этой сущности.
// События других типов и чужие уведомления пропускаются без ошибки.
func newCacheRefreshHandler(orchestrators *Orchestrators, session domain.Session, logger *log.Entry) kafka.MessageHandler {
	if logger == nil {
		logger = log.WithField("component", "cache-refresh")
	}

	refreshByTable := map[string]func(){
		masterdata.TableCustomers:     orchestrators.Customers.Refresh,
		masterdata.TableSubCategories: orchestrators.SubCategories.Refresh,
		masterdata.TableUnits:         orchestrators.Units.Refresh,
		masterdata.TableSuppliers:     orchestrators.Suppliers.Refresh,
		masterdata.TableUsers:         orchestrators.Users.Refresh,
	}

	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		envelope, err := kafka.ParseOutboxEnvelope(message)
		if err != nil {
			return err
		}

		notification, err := envelope.Notification()
		if err != nil {
			return err
		}
		if notification == nil {
			return nil
		}

		if !addressedTo(notification, session.CurrentUserID()) {
			return nil
		}

		for _, ref := range notification.Refs {
			refresh, ok := refreshByTable[ref.Table]
			if !ok {
				logger.WithField("table", ref.Table).Warn("notification for unknown table")
				continue
			}
			refresh()
			logger.WithFields(log.Fields{
				"table":     ref.Table,
				"record_id": ref.RecordID,
			}).Debug("cache refreshed after notification")
		}
		return nil
	}
}

// addressedTo проверяет, входит ли пользователь в аудиторию уведомления.
func addressedTo(notification *domain.Notification, userID int64) bool {
	for _, recipient := range notification.Recipients {
		if recipient == userID {
			return true
		}
	}
	return false
}
