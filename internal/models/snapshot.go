package models

import "time"

// MachineStatus is the derived machine-level health label.
type MachineStatus string

const (
	MachineHealthy  MachineStatus = "Healthy"
	MachineWarning  MachineStatus = "Warning"
	MachineCritical MachineStatus = "Critical"
)

// SensorReadout is the live-channel view of a single reading.
type SensorReadout struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Type      SensorType   `json:"type"`
	Value     float64      `json:"value"`
	Unit      string       `json:"unit"`
	Threshold float64      `json:"threshold"`
	IsAlert   bool         `json:"isAlert"`
	Status    SensorStatus `json:"status"`
}

// Snapshot is the per-cycle aggregate pushed to live subscribers. It is
// rebuilt on every cycle and never persisted. Sensors keeps catalog
// iteration order; Alerts follows the same order.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Sensors   []SensorReadout `json:"sensors"`
	Status    MachineStatus   `json:"status"`
	Alerts    []string        `json:"alerts"`
}
