package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/messaging/kafka"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой или если произошла ошибка.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// initCacheConsumer подписывает consumer group на топик событий, чтобы
// обновлять наблюдаемые списки справочников по входящим уведомлениям.
// Возвращает nil, nil если brokers пустой.
func initCacheConsumer(cfg Config, handler kafka.MessageHandler, dlqProducer *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	if cfg.KafkaBrokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(cfg.KafkaBrokers, ",")
	consumer, err := kafka.NewConsumerWithDLQ(brokerList, cfg.ConsumerGroup,
		[]string{cfg.EventsTopic}, handler, dlqProducer, 3)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka consumer, continuing without cache refresh")
		return nil, err
	}

	logger.WithFields(log.Fields{
		"group": cfg.ConsumerGroup,
		"topic": cfg.EventsTopic,
	}).Info("kafka cache consumer initialized")
	return consumer, nil
}

// closeConsumer останавливает Kafka consumer если он не nil.
func closeConsumer(consumer *kafka.Consumer, logger *log.Entry) {
	if consumer == nil {
		return
	}

	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	} else {
		logger.Info("kafka consumer stopped")
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
