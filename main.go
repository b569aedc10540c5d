package main

import (
	"log"

	"github.com/SundayYogurt/rolematch/config"
	"github.com/SundayYogurt/rolematch/internal/api"
	"github.com/SundayYogurt/rolematch/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to the env file (ignored when ENV=prod)")
	seed := flag.Bool("seed", false, "seed demo users, projects and roles into an empty database")
	flag.Parse()

	//load configuration
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	if err := api.StartServer(cfg, logr, *seed); err != nil {
		logr.WithError(err).Fatal("server stopped")
	}
}
