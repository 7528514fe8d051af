package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"machinewise/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errStartInvalid = "invalid 'startTime'; use RFC3339 or YYYY-MM-DD"
	errEndInvalid   = "invalid 'endTime'; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; must be a positive integer"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Query historical readings
// @Description  Readings matching all supplied filters, newest first. Date-only 'endTime' is treated as end-of-day inclusive.
// @Tags         sensors
// @Produce      json
// @Param        sensorId   query  int     false  "Sensor ID"
// @Param        startTime  query  string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-08-01)
// @Param        endTime    query  string  false  "End of range; date-only treated as end of day"  example(2026-08-31)
// @Param        limit      query  int     false  "Max readings to return (default 100)"
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/sensors/historical [get]
func (h *Handler) getHistoricalData(c *gin.Context) {
	var f service.HistoryFilter

	if qs := c.Query("sensorId"); qs != "" {
		id, err := strconv.ParseInt(qs, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
			return
		}
		f.SensorID = id
	}
	if qs := c.Query("startTime"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errStartInvalid})
			return
		}
		f.From = t
	}
	if qs := c.Query("endTime"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errEndInvalid})
			return
		}
		// If the user didn't include a time component, treat the end as end of that day.
		if isDateOnly(qs) {
			t = t.Add(24*time.Hour - time.Nanosecond).UTC()
		}
		f.To = t
	}
	if qs := c.Query("limit"); qs != "" {
		limit, err := strconv.Atoi(qs)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		f.Limit = limit
	}

	readings, err := h.services.History.Query(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load historical data", "history_query_failed", err,
			"sensorId", f.SensorID, "startTime", f.From, "endTime", f.To)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
