package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger vytvoří JSON logger podle konfigurace.
// Do souboru LogFile se loguje vždy, na stdout jen s LogStdout.
// extra jsou další cíle (např. MqttLogWriter); nil položky se přeskočí.
// Vrácený soubor musí volající zavřít.
func NewLogger(cfg Config, extra ...io.Writer) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("nelze otevřít log soubor %s: %w", cfg.LogFile, err)
	}

	writers := []io.Writer{f}
	if cfg.LogStdout {
		writers = append(writers, os.Stdout)
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})
	return slog.New(handler), f, nil
}

// parseLevel převede LOG_LEVEL (debug, info, warn, error) na slog.Level. Neznámá hodnota = info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
