package main

import (
	"log"

	"github.com/joho/godotenv"

	"cafedash/cmd"
	"cafedash/internal/config"
	"cafedash/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// An invalid configuration is reported by the command that needs it
	cfg, cfgErr := config.Load()
	if cfg == nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	cmd.Execute(cfg, cfgErr)
}
