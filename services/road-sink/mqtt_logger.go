package main

import (
	"bytes"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MqttLogWriter implementuje io.Writer a každý zapsaný řádek logu odešle do MQTT.
type MqttLogWriter struct {
	client mqtt.Client
	topic  string
}

// NewMqttLogWriter vytvoří writer pro topic logs/<serviceName>.
func NewMqttLogWriter(client mqtt.Client, serviceName string) *MqttLogWriter {
	return &MqttLogWriter{
		client: client,
		topic:  fmt.Sprintf("logs/%s", serviceName),
	}
}

// Write publikuje bez čekání na token (fire-and-forget), aby logování nebrzdilo requesty.
// Když spojení k brokeru zrovna neexistuje, řádek se tiše zahodí - máme ho i v souboru.
func (w *MqttLogWriter) Write(p []byte) (int, error) {
	if !w.client.IsConnectionOpen() {
		return len(p), nil
	}

	// slog buffer 'p' po návratu recykluje, proto kopie.
	payload := bytes.TrimRight(bytes.Clone(p), "\n")
	w.client.Publish(w.topic, 0, false, payload)

	return len(p), nil
}
