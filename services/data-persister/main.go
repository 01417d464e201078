package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	cfg := LoadConfig()

	// 1. Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("Startuji Data Persister", "broker", cfg.MQTTBroker, "topic", cfg.InputTopic)

	// 2. Repozitář (DB + Valkey) a schéma
	ctx := context.Background()
	repo, err := NewRepository(ctx, cfg)
	if err != nil {
		logger.Error("Kritická chyba připojení k databázím", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("Kritická chyba: schéma", "error", err)
		os.Exit(1)
	}
	logger.Info("Databáze připojeny")

	consumer := NewConsumer(repo, cfg.SaveTimeout, logger)

	// 3. MQTT
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		// Chyba je už zalogovaná uvnitř, zpráva se zahazuje.
		_ = consumer.HandlePayload(msg.Topic(), msg.Payload())
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("MQTT connection failed", "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	if token := client.Subscribe(cfg.InputTopic, 0, nil); token.Wait() && token.Error() != nil {
		logger.Error("Subscribe failed", "error", token.Error())
		os.Exit(1)
	}
	logger.Info("Poslouchám na topicu", "topic", cfg.InputTopic)

	// 4. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Vypínám službu...")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
