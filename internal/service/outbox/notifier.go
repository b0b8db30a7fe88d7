package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

const notificationEventType = "notification.queued"

// Notifier кладёт уведомления в transactional outbox вместо прямой
// отправки в брокер. Публикацией занимается Worker.
type Notifier struct {
	repo   domain.OutboxRepository
	logger *log.Entry
}

// NewNotifier создаёт outbox-backed реализацию Notifier.
func NewNotifier(repo domain.OutboxRepository, logger *log.Entry) *Notifier {
	if logger == nil {
		logger = log.WithField("component", "outbox-notifier")
	}
	return &Notifier{repo: repo, logger: logger}
}

// Send сериализует уведомление и ставит его в очередь на публикацию.
// Пустой список получателей не является ошибкой: уведомлять некого.
func (n *Notifier) Send(recipients []int64, refs []domain.ChangeRef, message string) error {
	if len(recipients) == 0 {
		n.logger.Debug("notification skipped: empty audience")
		return nil
	}

	notification := domain.Notification{
		ID:         uuid.NewString(),
		Recipients: recipients,
		Refs:       refs,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	aggregateID := notification.ID
	if len(refs) > 0 {
		aggregateID = fmt.Sprintf("%s:%d", refs[0].Table, refs[0].RecordID)
	}

	if _, err := n.repo.Enqueue(domain.OutboxMessage{
		ID:            notification.ID,
		AggregateType: "notification",
		AggregateID:   aggregateID,
		EventType:     notificationEventType,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	n.logger.WithFields(log.Fields{
		"notification_id": notification.ID,
		"recipients":      len(recipients),
	}).Debug("notification queued")

	return nil
}

var _ domain.Notifier = (*Notifier)(nil)
