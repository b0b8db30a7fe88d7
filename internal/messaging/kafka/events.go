package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// Мутации справочников
	EventTypeRecordCreated EventType = "masterdata.record.created"
	EventTypeRecordUpdated EventType = "masterdata.record.updated"
	EventTypeRecordFlagged EventType = "masterdata.record.flagged"

	// Уведомления пользователям
	EventTypeNotificationQueued EventType = "notification.queued"
)

// Topics для Kafka
const (
	TopicMasterDataEvents = "mdm.masterdata.events"
	TopicDeadLetterQueue  = "mdm.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// RecordEvent представляет событие мутации записи справочника
type RecordEvent struct {
	EventType EventType              `json:"event_type"`
	Table     string                 `json:"table"`
	RecordID  int64                  `json:"record_id"`
	ActorID   int64                  `json:"actor_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// OutboxEnvelope — конверт, в котором outbox-сообщения уходят в топик событий.
// Payload хранится как сырой JSON: его тип определяется EventType.
type OutboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// Notification декодирует payload конверта как уведомление.
// Для событий других типов возвращает (nil, nil).
func (e *OutboxEnvelope) Notification() (*domain.Notification, error) {
	if e == nil || e.EventType != string(EventTypeNotificationQueued) {
		return nil, nil
	}

	var notification domain.Notification
	if err := json.Unmarshal(e.Payload, &notification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	return &notification, nil
}

// NewRecordEvent создает новое событие мутации записи
func NewRecordEvent(eventType EventType, table string, recordID, actorID int64, metadata map[string]interface{}) *RecordEvent {
	return &RecordEvent{
		EventType: eventType,
		Table:     table,
		RecordID:  recordID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
