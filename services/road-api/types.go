package main

import "time"

// ReadingDTO je jedno měření, jak ho API vrací frontendu.
// Hodnoty jsou pointery: null znamená, že senzor danou veličinu neposlal.
type ReadingDTO struct {
	Time time.Time `json:"time"`

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

// lastReading je tvar záznamu ve Valkey (zapisuje data-persister).
type lastReading struct {
	Timestamp int64 `json:"timestamp"`

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

func (l lastReading) toDTO() ReadingDTO {
	return ReadingDTO{
		Time:             time.Unix(l.Timestamp, 0).UTC(),
		OrientationAlpha: l.OrientationAlpha,
		OrientationBeta:  l.OrientationBeta,
		OrientationGamma: l.OrientationGamma,
		AccelerationX:    l.AccelerationX,
		AccelerationY:    l.AccelerationY,
		AccelerationZ:    l.AccelerationZ,
		LocationLat:      l.LocationLat,
		LocationLon:      l.LocationLon,
		LocationAcc:      l.LocationAcc,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
