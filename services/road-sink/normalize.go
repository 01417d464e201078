package main

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Formát timestampu, který posílá mobilní aplikace: 2024-01-01T00:00:00.000Z
// Měsíc, den, hodina, minuta a sekunda můžou mít 1 nebo 2 číslice (2024-1-1T0:0:0.0Z),
// zlomek sekundy 1 až 6 číslic, "Z" na konci je povinné.
const timestampLayout = "2006-1-2T15:4:5.999999Z"

// Go layout ".999999" by vzal i chybějící nebo delší zlomek, proto tvar hlídá ještě regex.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}T\d{1,2}:\d{1,2}:\d{1,2}\.\d{1,6}Z$`)

var (
	ErrMissingTimestamp = errors.New("timestamp chybí")
	ErrInvalidTimestamp = errors.New("timestamp neodpovídá formátu YYYY-MM-DDTHH:MM:SS.ffffffZ")
)

// DefaultTimestamp vrací čas přijetí ve stejném formátu, jaký posílá aplikace,
// takže i požadavek bez timestampu projde normalizací.
func DefaultTimestamp(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// ParseReadingTimestamp převede timestamp senzoru na čas v UTC.
func ParseReadingTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	if !timestampPattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		// Tvar sedí, ale hodnota ne (např. 13. měsíc).
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return t, nil
}

// Normalize zploští SensorReading do NormalizedPayload.
// Chybějící vnořené objekty dávají null hodnoty, nikdy chybu.
// Jediná chyba je nečitelný timestamp - v tom případě se forward neprovádí.
func Normalize(reading SensorReading, timestamp string) (NormalizedPayload, error) {
	t, err := ParseReadingTimestamp(timestamp)
	if err != nil {
		return NormalizedPayload{}, err
	}

	payload := NormalizedPayload{Timestamp: t.Unix()}

	if o := reading.Orientation; o != nil {
		payload.OrientationAlpha = o.Alpha
		payload.OrientationBeta = o.Beta
		payload.OrientationGamma = o.Gamma
	}

	if m := reading.Motion; m != nil && m.Acceleration != nil {
		payload.AccelerationX = m.Acceleration.X
		payload.AccelerationY = m.Acceleration.Y
		payload.AccelerationZ = m.Acceleration.Z
	}

	if g := reading.GPS; g != nil {
		payload.LocationLat = g.Latitude
		payload.LocationLon = g.Longitude
		payload.LocationAcc = g.Accuracy
	}

	return payload, nil
}
