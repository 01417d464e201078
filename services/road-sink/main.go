package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	// 1. Konfigurace
	cfg := LoadConfig()

	// 2. MQTT klient (volitelný). Musí vzniknout před loggerem, pokud má logger psát i do MQTT.
	var mqttClient mqtt.Client
	if cfg.MQTTBroker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientID).
			SetAutoReconnect(true)
		mqttClient = mqtt.NewClient(opts)
		if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
			// Logger ještě nemáme, fallback na default slog (stderr).
			slog.Error("Fatal MQTT Error", "broker", cfg.MQTTBroker, "err", token.Error())
			os.Exit(1)
		}
		defer mqttClient.Disconnect(250)
	}

	// 3. Logger: soubor, volitelně stdout a MQTT
	var extra []io.Writer
	if cfg.LogMQTT && mqttClient != nil {
		extra = append(extra, NewMqttLogWriter(mqttClient, "road-sink"))
	}
	logger, logFile, err := NewLogger(cfg, extra...)
	if err != nil {
		slog.Error("Nelze inicializovat logger", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	logger.Info("Spouštím Road Sensor Sink",
		"port", cfg.HTTPPort,
		"collector", cfg.CollectorURL,
		"store_json", cfg.StoreJSON,
		"store_images", cfg.StoreImages,
		"mqtt_relay", mqttClient != nil,
	)

	// 4. Lokální úložiště
	store := NewLocalStore(cfg)
	store.EnsureDirs(logger)

	// 5. Forward cíle
	collector := NewCollectorClient(cfg.CollectorURL, cfg.ForwardTimeout)
	var relay Forwarder
	if mqttClient != nil {
		relay = NewMQTTRelay(mqttClient, cfg.OutputTopic)
		logger.Info("MQTT relay aktivní", "broker", cfg.MQTTBroker, "topic", cfg.OutputTopic)
	}

	// 6. Router
	ingest := NewIngestHandler(cfg, store, collector, relay, logger)
	mux := http.NewServeMux()
	ingest.RegisterRoutes(mux)
	mux.Handle("GET /health", NewHealthHandler(logger, cfg.DataDir, cfg.ImageDir))

	// 7. HTTP server na všech rozhraních
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: CorsMiddleware(mux),
	}

	logger.Info("HTTP server naslouchá", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Chyba při startu HTTP serveru", "error", err)
		os.Exit(1)
	}
}
