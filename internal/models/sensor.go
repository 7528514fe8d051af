package models

// SensorType identifies the physical quantity a sensor measures.
type SensorType string

const (
	TypeTemperature SensorType = "temperature"
	TypeVibration   SensorType = "vibration"
	TypeCurrent     SensorType = "current"
	TypeVoltage     SensorType = "voltage"
	TypePressure    SensorType = "pressure"
)

// Valid reports whether t is one of the supported sensor types.
func (t SensorType) Valid() bool {
	switch t {
	case TypeTemperature, TypeVibration, TypeCurrent, TypeVoltage, TypePressure:
		return true
	}
	return false
}

// Sensor is the durable definition of one monitored quantity.
// Name is unique; MinValue/MaxValue bound simulated generation only.
type Sensor struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      SensorType `json:"type"`
	Unit      string     `json:"unit"`
	Threshold float64    `json:"threshold"`
	MinValue  float64    `json:"minValue"`
	MaxValue  float64    `json:"maxValue"`
	IsActive  bool       `json:"isActive"`
}
