package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// ReadingStore je úložiště měření (implementuje Repository).
type ReadingStore interface {
	SaveReading(ctx context.Context, reading RoadReading) error
}

// Consumer zpracovává zprávy z MQTT. Jedna zpráva = jedno měření.
type Consumer struct {
	store       ReadingStore
	saveTimeout time.Duration
	logger      *slog.Logger
}

func NewConsumer(store ReadingStore, saveTimeout time.Duration, logger *slog.Logger) *Consumer {
	return &Consumer{store: store, saveTimeout: saveTimeout, logger: logger}
}

// HandlePayload dekóduje a uloží jednu zprávu. Chybná zpráva se zahodí, služba běží dál.
func (c *Consumer) HandlePayload(topic string, payload []byte) error {
	var reading RoadReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		c.logger.Error("Neplatný JSON formát", "topic", topic, "payload", string(payload), "error", err)
		return fmt.Errorf("neplatný JSON: %w", err)
	}

	// Každé uložení má vlastní timeout, aby jedna zaseknutá DB operace neblokovala další zprávy.
	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()

	if err := c.store.SaveReading(ctx, reading); err != nil {
		c.logger.Error("Chyba při ukládání dat", "timestamp", reading.Timestamp, "error", err)
		return err
	}

	c.logger.Debug("Data uložena", "timestamp", reading.Timestamp)
	return nil
}
