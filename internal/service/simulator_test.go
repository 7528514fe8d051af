package service

import (
	"math"
	"testing"

	"machinewise/internal/models"
)

func TestGenerate_StaysWithinConfiguredRange(t *testing.T) {
	svc := NewSimulatorService()
	s := testSensor("Voltage", models.TypeVoltage, "V", 250, 200, 300)

	for i := 0; i < 500; i++ {
		v := svc.Generate(s)
		if v < s.MinValue || v > s.MaxValue {
			t.Fatalf("value %v outside [%v, %v]", v, s.MinValue, s.MaxValue)
		}
	}
}

func TestGenerate_RoundsToOneDecimal(t *testing.T) {
	svc := NewSimulatorService()
	s := tempSensor()

	for i := 0; i < 500; i++ {
		v := svc.Generate(s)
		if scaled := v * 10; math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("value %v not rounded to one decimal", v)
		}
	}
}

func TestGenerate_DegenerateRange(t *testing.T) {
	svc := NewSimulatorService()
	s := testSensor("Fixed", models.TypePressure, "bar", 5, 3, 3)

	if v := svc.Generate(s); v != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}
