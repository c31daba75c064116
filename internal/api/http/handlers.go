package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mekedron/airq-cli/internal/domain"
)

// PingResponse is the health check payload.
type PingResponse struct {
	Message string `json:"message"`
}

// LocationInput is the body of POST /api/location.
type LocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// HourInput is the body of PUT /api/hour.
type HourInput struct {
	Index *int `json:"index" binding:"required"`
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

func (s *Server) handleGetState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handlePostLocation(c *gin.Context) {
	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The fetch outlives this request; only the store may cancel it.
	ctx := context.WithoutCancel(c.Request.Context())
	req, err := s.store.FetchForecast(ctx, *input.Latitude, *input.Longitude)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("failed to request forecast",
			"latitude", *input.Latitude,
			"longitude", *input.Longitude,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request forecast"})
		return
	}

	s.logger.Debug("location picked", "seq", req.Seq, "latitude", req.Location.Lat, "longitude", req.Location.Lon)
	c.JSON(http.StatusAccepted, s.store.Snapshot())
}

func (s *Server) handlePutHour(c *gin.Context) {
	var input HourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.store.SetActiveHour(*input.Index)
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleGetMarkers(c *gin.Context) {
	markers := s.store.Markers()
	if markers == nil {
		markers = []domain.Marker{}
	}
	c.JSON(http.StatusOK, markers)
}
