package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/rolematch/config"
	"github.com/SundayYogurt/rolematch/infra/queue"
	"github.com/SundayYogurt/rolematch/internal/notify"
	"github.com/SundayYogurt/rolematch/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to the env file (ignored when ENV=prod)")
	flag.Parse()

	// ---------- Load Config ----------
	cfg, err := config.LoadNotifierConfig(*envFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logr := logger.New(cfg.LogLevel)
	if cfg.Kafka.Broker == "" {
		logr.Fatal("KAFKA_BROKER is required")
	}

	logr.WithFields(map[string]interface{}{
		"broker":   cfg.Kafka.Broker,
		"topic":    cfg.Kafka.Topic,
		"group_id": cfg.Kafka.GroupID,
	}).Info("notifier starting")

	// ---------- Init Service ----------
	mailService := notify.NewMailService(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.MailFromName,
		logr,
	)

	// ---------- Init Handler ----------
	handler := notify.NewEventHandler(mailService, logr)

	// ---------- Init Kafka Consumer ----------
	consumer := queue.NewKafkaConsumer(
		cfg.Kafka.Broker,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.Username,
		cfg.Kafka.Password,
		handler,
		logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- Start Listening ----------
	logr.Info("notifier listening for application events")
	if err := consumer.Listen(ctx); err != nil {
		logr.WithError(err).Fatal("consumer stopped")
	}
}
