package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errGetSensorData = "Failed to get sensor data"

// @Summary      Get a fresh snapshot
// @Description  Generates and classifies one value per active sensor without persisting or broadcasting.
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      500  {object}  map[string]string
// @Router       /api/sensor-data [get]
func (h *Handler) getSensorData(c *gin.Context) {
	snap, err := h.services.Broadcaster.OnDemand(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSensorData, "sensor_data_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
