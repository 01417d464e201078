package main

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotObject = errors.New("tělo požadavku není JSON objekt")

// SensorReading je tělo požadavku z mobilního senzoru.
// Všechna pole jsou volitelná. Pointer nil = pole v JSONu chybí, je null nebo má špatný typ.
type SensorReading struct {
	Timestamp   *string      `json:"timestamp"`
	Orientation *Orientation `json:"orientation"`
	Motion      *Motion      `json:"motion"`
	GPS         *GPS         `json:"gps"`

	// Image je PNG v base64. Prázdný string se bere stejně jako chybějící pole.
	Image *string `json:"image"`

	// RawTimestamp je JSON text timestampu, který není string (např. 42).
	// Slouží jen jako název souboru, normalizací neprojde.
	RawTimestamp string `json:"-"`

	// RawImage je JSON text pole "image", které není string. Takový obrázek nejde uložit.
	RawImage string `json:"-"`
}

// UnmarshalJSON je tolerantní ke špatným typům: hodnota, která není číslo (resp. objekt
// nebo string tam, kde se čeká), se bere jako chybějící. Chyba je jen tělo, které není objekt.
func (r *SensorReading) UnmarshalJSON(data []byte) error {
	fields, ok := jsonObject(data)
	if !ok {
		return errNotObject
	}
	*r = SensorReading{}

	r.Timestamp, r.RawTimestamp = jsonString(fields["timestamp"])
	r.Image, r.RawImage = jsonString(fields["image"])

	if o, ok := jsonObject(fields["orientation"]); ok {
		r.Orientation = &Orientation{
			Alpha: jsonNumber(o["alpha"]),
			Beta:  jsonNumber(o["beta"]),
			Gamma: jsonNumber(o["gamma"]),
		}
	}

	if m, ok := jsonObject(fields["motion"]); ok {
		r.Motion = &Motion{}
		if a, ok := jsonObject(m["acceleration"]); ok {
			r.Motion.Acceleration = &Acceleration{
				X: jsonNumber(a["x"]),
				Y: jsonNumber(a["y"]),
				Z: jsonNumber(a["z"]),
			}
		}
	}

	if g, ok := jsonObject(fields["gps"]); ok {
		r.GPS = &GPS{
			Latitude:  jsonNumber(g["latitude"]),
			Longitude: jsonNumber(g["longitude"]),
			Accuracy:  jsonNumber(g["accuracy"]),
		}
	}

	return nil
}

func jsonObject(raw []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// jsonNumber vrací nil pro chybějící pole, null i hodnotu jiného typu ("1.0", true...).
func jsonNumber(raw json.RawMessage) *float64 {
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

// jsonString vrací string, nebo kompaktní JSON text hodnoty, která string není.
// Chybějící pole a null dávají (nil, "").
func jsonString(raw json.RawMessage) (*string, string) {
	var s *string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	if len(raw) == 0 {
		return nil, ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, ""
	}
	return nil, compact.String()
}

// Orientation odpovídá DeviceOrientationEvent (úhly ve stupních).
type Orientation struct {
	Alpha *float64 `json:"alpha"`
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
}

type Motion struct {
	Acceleration *Acceleration `json:"acceleration"`
}

// Acceleration v m/s² pro jednotlivé osy.
type Acceleration struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type GPS struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"` // v metrech
}

// NormalizedPayload je plochá struktura, kterou posíláme do collectoru (a volitelně do MQTT).
// Bez omitempty: chybějící hodnota se musí odeslat jako null, ne vynechat.
type NormalizedPayload struct {
	Timestamp int64 `json:"timestamp"` // epoch sekundy (UTC)

	OrientationAlpha *float64 `json:"orientation_alpha"`
	OrientationBeta  *float64 `json:"orientation_beta"`
	OrientationGamma *float64 `json:"orientation_gamma"`

	AccelerationX *float64 `json:"acceleration_x"`
	AccelerationY *float64 `json:"acceleration_y"`
	AccelerationZ *float64 `json:"acceleration_z"`

	LocationLat *float64 `json:"location_lat"`
	LocationLon *float64 `json:"location_lon"`
	LocationAcc *float64 `json:"location_acc"`
}

// StatusResponse je jediný tvar odpovědi, který sink vrací.
type StatusResponse struct {
	Message string `json:"message"`
}
