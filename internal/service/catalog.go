package service

import (
	"context"
	"errors"
	"strings"

	"machinewise/internal/models"
	"machinewise/internal/repository"
)

type CatalogService struct {
	sensors repository.SensorRepo
}

func NewCatalogService(sensors repository.SensorRepo) *CatalogService {
	return &CatalogService{sensors: sensors}
}

var (
	errEmptyName    = errors.New("sensor name is required")
	errUnknownType  = errors.New("unknown sensor type: must be temperature, vibration, current, voltage, or pressure")
	errInvalidRange = errors.New("invalid range: minValue must be <= maxValue")
)

// validateSensor enforces the catalog invariants before any write.
func validateSensor(s models.Sensor) error {
	if strings.TrimSpace(s.Name) == "" {
		return errEmptyName
	}
	if !s.Type.Valid() {
		return errUnknownType
	}
	if s.MinValue > s.MaxValue {
		return errInvalidRange
	}
	return nil
}

func (c *CatalogService) List(ctx context.Context) ([]models.Sensor, error) {
	return c.sensors.List(ctx)
}

func (c *CatalogService) ListActive(ctx context.Context) ([]models.Sensor, error) {
	return c.sensors.ListActive(ctx)
}

func (c *CatalogService) Create(ctx context.Context, s models.Sensor) (models.Sensor, error) {
	s.Name = strings.TrimSpace(s.Name)
	if err := validateSensor(s); err != nil {
		return models.Sensor{}, err
	}
	id, err := c.sensors.Create(ctx, s)
	if err != nil {
		return models.Sensor{}, err
	}
	s.ID = id
	return s, nil
}

func (c *CatalogService) Update(ctx context.Context, s models.Sensor) error {
	s.Name = strings.TrimSpace(s.Name)
	if err := validateSensor(s); err != nil {
		return err
	}
	return c.sensors.Update(ctx, s)
}

func (c *CatalogService) Delete(ctx context.Context, id int64) error {
	return c.sensors.Delete(ctx, id)
}

func (c *CatalogService) EnsureDefaults(ctx context.Context) error {
	return c.sensors.EnsureDefaults(ctx)
}
