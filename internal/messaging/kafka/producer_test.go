package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидания
	mockProducer.ExpectSendMessageAndSucceed()

	// Создаем тестовое событие
	event := NewRecordEvent(
		EventTypeRecordCreated,
		"customers",
		7,
		3,
		map[string]interface{}{
			"code": "CUST-001",
		},
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicMasterDataEvents, "customers:7", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	// Создаем mock producer с ошибкой
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидание ошибки
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewRecordEvent(
		EventTypeRecordUpdated,
		"units",
		2,
		3,
		nil,
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicMasterDataEvents, "units:2", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewRecordEvent(t *testing.T) {
	metadata := map[string]interface{}{
		"code": "SUP-9",
		"name": "Northbay Supplies",
	}

	event := NewRecordEvent(EventTypeRecordCreated, "suppliers", 9, 3, metadata)

	if event.EventType != EventTypeRecordCreated {
		t.Errorf("expected event type %s, got %s", EventTypeRecordCreated, event.EventType)
	}

	if event.Table != "suppliers" || event.RecordID != 9 || event.ActorID != 3 {
		t.Errorf("unexpected event fields: %+v", event)
	}

	if event.Metadata["code"] != "SUP-9" {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	// Проверяем, что timestamp близок к текущему времени
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestProducer_HealthcheckWithoutClient(t *testing.T) {
	producer := &Producer{
		producer: mocks.NewSyncProducer(t, nil),
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	if err := producer.Healthcheck(); err == nil {
		t.Fatal("expected healthcheck error without client")
	}

	var nilProducer *Producer
	if err := nilProducer.Healthcheck(); err == nil {
		t.Fatal("expected healthcheck error for nil producer")
	}
}
