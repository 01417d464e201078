package main

import "time"

// RoadReading je zpráva z topicu road/readings.
// Musí odpovídat NormalizedPayload, který publikuje služba 'road-sink'.
type RoadReading struct {
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

// Time vrací čas měření jako time.Time v UTC.
func (r RoadReading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}
