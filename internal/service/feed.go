package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"machinewise/internal/logger"
	"machinewise/internal/metrics"
	"machinewise/internal/models"
	"machinewise/internal/repository"
)

// FeedService ingests readings published on the bus, one topic per sensor
// type. Feed readings are persisted through the same classifier and store as
// the cycle path but never touch the scheduler: they show up in the next
// cycle's history queries, not as an immediate push.
type FeedService struct {
	sensors  repository.SensorRepo
	readings repository.ReadingRepo
	log      *logger.Logger
}

func NewFeedService(sensors repository.SensorRepo, readings repository.ReadingRepo, log *logger.Logger) *FeedService {
	return &FeedService{sensors: sensors, readings: readings, log: log}
}

// feedMessage is the bus payload. The timestamp is informational; readings
// are stamped with server time at write so history ordering stays on one
// clock.
type feedMessage struct {
	Value     *float64 `json:"value"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// HandleMessage classifies and persists one bus message. Malformed payloads
// and unknown or inactive sensor types are dropped at debug level; during a
// reconfiguration they are expected, not faults. Store errors propagate.
func (f *FeedService) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	var msg feedMessage
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Value == nil {
		metrics.FeedDropped(metrics.ReasonMalformed)
		f.log.Debugw("feed_message_malformed", "topic", topic)
		return nil
	}

	typ := sensorTypeFromTopic(topic)
	sensor, err := f.sensors.GetActiveByType(ctx, typ)
	if errors.Is(err, repository.ErrSensorNotFound) {
		metrics.FeedDropped(metrics.ReasonUnknownType)
		f.log.Debugw("feed_sensor_unknown", "topic", topic, "type", typ)
		return nil
	}
	if err != nil {
		return err
	}

	r := Classify(sensor, *msg.Value, time.Now())
	if err := f.readings.Append(ctx, r); err != nil {
		return err
	}
	metrics.ReadingStored(metrics.SourceFeed)
	f.log.Debugw("feed_reading_stored", "sensor", sensor.Name, "value", r.Value)
	return nil
}

// sensorTypeFromTopic takes the last topic segment as the sensor type,
// e.g. machinewise/sensors/temperature → temperature.
func sensorTypeFromTopic(topic string) models.SensorType {
	if i := strings.LastIndex(topic, "/"); i >= 0 {
		topic = topic[i+1:]
	}
	return models.SensorType(topic)
}
