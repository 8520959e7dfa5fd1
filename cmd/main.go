package main

import (
	"context"
	"os"

	"github.com/lukestiles/voice-memo-to-doc/internal/services"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var transcription services.Transcription
	if config.Credentials.OpenAI.APIKey != "" {
		if svc, err := services.NewOpenAIService(map[string]string{
			"api_key":      config.Credentials.OpenAI.APIKey,
			"organization": config.Credentials.OpenAI.Organization,
			"project":      config.Credentials.OpenAI.Project,
		}, logger); err == nil {
			transcription = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:        config,
		Transcription: transcription,
		Logger:        logger,
	})

	app := &cli.Command{
		Name:     "voice-memo-to-doc",
		Usage:    "Transcribe voice memos and collect them in a Google Doc",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
