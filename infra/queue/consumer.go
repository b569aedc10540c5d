package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/SundayYogurt/rolematch/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/sirupsen/logrus"
)

type KafkaConsumer struct {
	Reader  *kafka.Reader
	Handler interfaces.ConsumerHandler
	log     logrus.FieldLogger
}

func NewKafkaConsumer(broker, topic, groupID, username, password string, handler interfaces.ConsumerHandler, log logrus.FieldLogger) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: username,
			Password: password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, //10KB
		MaxBytes: 10e6, //10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:  reader,
		Handler: handler,
		log:     log.WithField("topic", topic),
	}
}

// Listen reads messages until ctx is cancelled. Handler errors are logged and
// the message is still committed.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	defer kc.Reader.Close()

	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			kc.log.WithError(err).Warn("error on reading message")
			continue
		}

		kc.log.WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Debug("received message")

		if err := kc.Handler.HandleMessage(ctx, msg.Key, msg.Value); err != nil {
			kc.log.WithError(err).Error("error on processing message on handler")
		}
	}
}
