// Command bot runs the Telegram bot that browses posts through the API.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"postboard/internal/bot"
	"postboard/internal/botclient"
	"postboard/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	client := botclient.New(cfg.APIBaseURL)
	b, err := bot.New(cfg.BotToken, client)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot stopped: %v", err)
	}
	log.Println("Bot shutdown complete")
}
