package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"machinewise/internal/models"

	"github.com/google/uuid"
)

// Classify maps a raw value to an immutable reading. The range on the sensor
// is advisory for generation only: out-of-range or non-finite values are
// still labeled, never rejected.
func Classify(s models.Sensor, value float64, at time.Time) models.Reading {
	isAlert := value > s.Threshold
	status := models.StatusNormal
	if isAlert {
		status = models.StatusWarning
	}
	return models.Reading{
		ID:         uuid.NewString(),
		SensorID:   s.ID,
		SensorName: s.Name,
		SensorType: s.Type,
		Value:      value,
		Unit:       s.Unit,
		Threshold:  s.Threshold,
		IsAlert:    isAlert,
		Status:     status,
		Timestamp:  at.UTC(),
	}
}

// DeriveOverallStatus computes the machine-level status from one cycle's
// readings. Temperature and vibration are the designated pair: Critical only
// when both exceed their thresholds, Warning when either does. Without the
// full pair the result is capped at Warning (any alerting reading), never
// Critical.
func DeriveOverallStatus(readings []models.Reading) models.MachineStatus {
	var temp, vib *models.Reading
	for i := range readings {
		switch readings[i].SensorType {
		case models.TypeTemperature:
			if temp == nil {
				temp = &readings[i]
			}
		case models.TypeVibration:
			if vib == nil {
				vib = &readings[i]
			}
		}
	}

	if temp != nil && vib != nil {
		tempHot := temp.Value > temp.Threshold
		vibHot := vib.Value > vib.Threshold
		switch {
		case tempHot && vibHot:
			return models.MachineCritical
		case tempHot || vibHot:
			return models.MachineWarning
		default:
			return models.MachineHealthy
		}
	}

	for _, r := range readings {
		if r.IsAlert {
			return models.MachineWarning
		}
	}
	return models.MachineHealthy
}

// BuildAlerts renders one human-readable line per alerting reading, in
// reading order. The wording is consumed verbatim by the UI layer.
func BuildAlerts(readings []models.Reading) []string {
	alerts := make([]string, 0)
	for _, r := range readings {
		if !r.IsAlert {
			continue
		}
		alerts = append(alerts, fmt.Sprintf("%s %s alert: %s%s",
			r.SensorName,
			strings.ToLower(string(r.Status)),
			strconv.FormatFloat(r.Value, 'f', 1, 64),
			r.Unit,
		))
	}
	return alerts
}

// NewSnapshot assembles the published aggregate from one set of readings.
func NewSnapshot(at time.Time, readings []models.Reading) models.Snapshot {
	outs := make([]models.SensorReadout, len(readings))
	for i, r := range readings {
		outs[i] = r.Readout()
	}
	return models.Snapshot{
		Timestamp: at.UTC(),
		Sensors:   outs,
		Status:    DeriveOverallStatus(readings),
		Alerts:    BuildAlerts(readings),
	}
}
