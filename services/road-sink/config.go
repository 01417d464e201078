package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config drží konfiguraci sinku pro silniční senzory.
// Všechny přepínače jsou statické - načtou se jednou při startu a předají se konstruktorům.
type Config struct {
	// HTTP server
	HTTPPort string

	// Forward: vzdálené API, kam posíláme normalizovaná data.
	// Úspěch je výhradně HTTP 201. ForwardTimeout 0 = bez timeoutu (default).
	CollectorURL   string
	ForwardTimeout time.Duration

	// Lokální úložiště
	StoreJSON   bool   // ukládat celé tělo požadavku do DataDir/<timestamp>.json
	StoreImages bool   // dekódovat pole "image" do ImageDir/<timestamp>.png
	DataDir     string
	ImageDir    string

	// UniqueFilenames přidá k názvu souboru UUID suffix.
	// Defaultně vypnuto - dva požadavky se stejným timestampem se přepíšou.
	UniqueFilenames bool

	// Logování
	LogFile   string
	LogStdout bool // true = soubor + stdout, false = jen soubor
	LogLevel  string
	LogMQTT   bool // posílat logy i do MQTT (logs/road-sink), jen pokud je nastaven broker

	// MQTT relay (volitelný). Prázdný broker = relay vypnutý.
	MQTTBroker   string
	MQTTClientID string
	OutputTopic  string
}

// LoadConfig načte nastavení z ENV. Pokud v pracovním adresáři existuje .env, načte ho jako první.
func LoadConfig() Config {
	// Chybějící .env není chyba, v Dockeru se konfigurace předává přímo přes ENV.
	_ = godotenv.Load()

	return Config{
		HTTPPort: getEnv("HTTP_PORT", "80"),

		CollectorURL:   getEnv("COLLECTOR_URL", "http://collector:8000/api/road-data"),
		ForwardTimeout: getEnvDuration("FORWARD_TIMEOUT", 0),

		StoreJSON:       getEnvBool("STORE_JSON", true),
		StoreImages:     getEnvBool("STORE_IMAGES", true),
		DataDir:         getEnv("DATA_DIR", "./data"),
		ImageDir:        getEnv("IMAGE_DIR", "./images"),
		UniqueFilenames: getEnvBool("UNIQUE_FILENAMES", false),

		LogFile:   getEnv("LOG_FILE", "app.log"),
		LogStdout: getEnvBool("LOG_STDOUT", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogMQTT:   getEnvBool("LOG_MQTT", false),

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "road-sink"),
		OutputTopic:  getEnv("OUTPUT_TOPIC", "road/readings"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvBool akceptuje cokoliv, co zná strconv.ParseBool ("1", "true", "FALSE"...).
// Nesmyslná hodnota vrací fallback.
func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
