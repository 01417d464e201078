package main

import (
	"os"

	"github.com/joho/godotenv"
)

// Config drží nastavení služby Log Collector.
type Config struct {
	MQTTBroker   string
	MQTTClientID string

	// LogTopic: topic s logy služeb (road-sink posílá na logs/road-sink)
	LogTopic string

	// LogDir: adresář, kam se zapisuje <služba>.log
	LogDir string
}

func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://mqtt:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "log-collector"),
		LogTopic:     getEnv("LOG_TOPIC", "logs/#"),
		LogDir:       getEnv("LOG_DIR", "/var/log/road-sensors"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
