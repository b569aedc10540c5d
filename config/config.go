package config

import (
	"errors"
	"log"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT,default=:3000"`
	DatabaseDSN string `env:"DATABASE_DSN,required"`
	BaseURL     string `env:"BASE_URL,default=*"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	Kafka Kafka

	RedisURL       string `env:"REDIS_URL"`
	ApplyRateLimit int    `env:"APPLY_RATE_LIMIT,default=3"`
}

type Kafka struct {
	Broker   string `env:"KAFKA_BROKER"`
	Topic    string `env:"KAFKA_TOPIC,default=application-events"`
	GroupID  string `env:"KAFKA_GROUP_ID,default=rolematch-notifier"`
	Username string `env:"KAFKA_USERNAME"`
	Password string `env:"KAFKA_PASSWORD"`
}

type NotifierConfig struct {
	LogLevel string `env:"LOG_LEVEL,default=info"`

	Kafka Kafka

	SMTPHost     string `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort     string `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
	MailFromName string `env:"MAIL_FROM_NAME,default=RoleMatch"`
}

// LoadConfig reads envFile (unless ENV=prod) and decodes the API settings.
func LoadConfig(envFile string) (Config, error) {
	loadEnvFile(envFile)

	var cfg Config
	if err := decode(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.ApplyRateLimit < 0 {
		cfg.ApplyRateLimit = 0
	}
	return cfg, nil
}

func LoadNotifierConfig(envFile string) (NotifierConfig, error) {
	loadEnvFile(envFile)

	var cfg NotifierConfig
	if err := decode(&cfg); err != nil {
		return NotifierConfig{}, err
	}
	return cfg, nil
}

func loadEnvFile(envFile string) {
	if os.Getenv("ENV") == "prod" {
		return
	}
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		log.Println("env file not found:", envFile)
		return
	}
	if err := godotenv.Overload(envFile); err != nil {
		log.Println("Warning: env file could not be loaded:", err)
	}
}

func decode(target interface{}) error {
	err := envdecode.Decode(target)
	if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil
	}
	return err
}
