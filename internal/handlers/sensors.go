package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"machinewise/internal/models"
	"machinewise/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	errListSensors  = "failed to list sensors"
	errCreateSensor = "failed to create sensor"
	errUpdateSensor = "failed to update sensor"
	errDeleteSensor = "failed to delete sensor"
	errInvalidID    = "invalid sensor id"

	errInvalidBodyPref = "invalid body: "
)

// Request DTO for creating/updating a sensor definition.
type sensorRequest struct {
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type" binding:"required"` // temperature | vibration | current | voltage | pressure
	Unit      string  `json:"unit" binding:"required"`
	Threshold float64 `json:"threshold"`
	MinValue  float64 `json:"minValue"`
	MaxValue  float64 `json:"maxValue"`
	IsActive  *bool   `json:"isActive,omitempty"` // defaults to true
}

func (r sensorRequest) toModel(id int64) models.Sensor {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Sensor{
		ID:        id,
		Name:      r.Name,
		Type:      models.SensorType(r.Type),
		Unit:      r.Unit,
		Threshold: r.Threshold,
		MinValue:  r.MinValue,
		MaxValue:  r.MaxValue,
		IsActive:  active,
	}
}

// @Summary      List sensors
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sensors"
// @Failure      500  {object}  map[string]string
// @Router       /api/sensors [get]
func (h *Handler) listSensors(c *gin.Context) {
	sensors, err := h.services.Catalog.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListSensors, "sensors_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(sensors),
		"sensors": sensors,
	})
}

// @Summary      Create sensor
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body   sensorRequest  true  "Sensor definition"
// @Success      201   {object}  models.Sensor
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/sensors [post]
func (h *Handler) createSensor(c *gin.Context) {
	var req sensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	created, err := h.services.Catalog.Create(c.Request.Context(), req.toModel(0))
	if err != nil {
		// Validation failures surface as bad requests; everything else is internal.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary      Update sensor
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        id    path   int            true  "Sensor ID"
// @Param        body  body   sensorRequest  true  "Sensor definition"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/sensors/{id} [put]
func (h *Handler) updateSensor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return
	}
	var req sensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Catalog.Update(c.Request.Context(), req.toModel(id)); err != nil {
		if errors.Is(err, repository.ErrSensorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "sensor_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// @Summary      Delete sensor
// @Tags         sensors
// @Produce      json
// @Param        id  path  int  true  "Sensor ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/sensors/{id} [delete]
func (h *Handler) deleteSensor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return
	}
	if err := h.services.Catalog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSensorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteSensor, "sensor_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
