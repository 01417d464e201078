package main

import (
	"context"
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTRelay publikuje normalizovaná data do MQTT, odkud si je bere data-persister.
// Chová se stejně jako forward na collector: chyba se jen zaloguje.
type MQTTRelay struct {
	client mqtt.Client
	topic  string
}

func NewMQTTRelay(client mqtt.Client, topic string) *MQTTRelay {
	return &MQTTRelay{client: client, topic: topic}
}

// Forward pošle payload s QoS 0 a počká na lokální potvrzení odeslání
// (nebo na zrušení contextu požadavku).
func (r *MQTTRelay) Forward(ctx context.Context, payload NormalizedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ForwardError{Kind: ForwardEncode, Err: err}
	}

	token := r.client.Publish(r.topic, 0, false, body)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return &ForwardError{Kind: ForwardPublish, Err: ctx.Err()}
	}

	if err := token.Error(); err != nil {
		return &ForwardError{Kind: ForwardPublish, Err: err}
	}
	return nil
}
