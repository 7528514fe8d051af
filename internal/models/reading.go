package models

import "time"

// SensorStatus is the per-reading alert label.
type SensorStatus string

const (
	StatusNormal   SensorStatus = "Normal"
	StatusWarning  SensorStatus = "Warning"
	StatusCritical SensorStatus = "Critical"
)

// Reading is one classified observation. Readings are written once and never
// updated; sensor name/type/unit/threshold are denormalized at write time so
// history survives later sensor edits or deletion.
type Reading struct {
	ID         string       `json:"id"`
	SensorID   int64        `json:"sensorId"`
	SensorName string       `json:"sensorName"`
	SensorType SensorType   `json:"sensorType"`
	Value      float64      `json:"value"`
	Unit       string       `json:"unit"`
	Threshold  float64      `json:"threshold"` // threshold at the time of the reading
	IsAlert    bool         `json:"isAlert"`
	Status     SensorStatus `json:"status"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Readout converts a reading into the per-sensor record published on the
// live channel.
func (r Reading) Readout() SensorReadout {
	return SensorReadout{
		ID:        r.SensorID,
		Name:      r.SensorName,
		Type:      r.SensorType,
		Value:     r.Value,
		Unit:      r.Unit,
		Threshold: r.Threshold,
		IsAlert:   r.IsAlert,
		Status:    r.Status,
	}
}
