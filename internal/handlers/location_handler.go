package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/weihan-tech/casetrack/internal/errors"
	"github.com/weihan-tech/casetrack/internal/services"
)

// LocationHandler handles location-related HTTP requests.
type LocationHandler struct {
	service services.LocationService
}

// NewLocationHandler creates a new LocationHandler instance.
func NewLocationHandler(service services.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// CreateLocationRequest is the payload for registering a location.
type CreateLocationRequest struct {
	Address    string  `json:"address" binding:"required"`
	Community  string  `json:"community" binding:"required"`
	UnitNumber string  `json:"unit_number" binding:"required"`
	Longitude  float64 `json:"longitude" binding:"min=-180,max=180"`
	Latitude   float64 `json:"latitude" binding:"min=-90,max=90"`
}

// Create handles POST /api/v1/locations.
func (h *LocationHandler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	loc, err := h.service.CreateLocation(c.Request.Context(), services.CreateLocationInput{
		Address:    req.Address,
		Longitude:  req.Longitude,
		Latitude:   req.Latitude,
		Community:  req.Community,
		UnitNumber: req.UnitNumber,
	})
	if err != nil {
		apierrors.InternalServerError(c, "Failed to create location", err)
		return
	}

	c.JSON(http.StatusCreated, loc)
}

// History handles GET /api/v1/locations/:id/history.
// The cases come back as brief records only; full detail lives on the case
// endpoints.
func (h *LocationHandler) History(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	history, err := h.service.GetLocationHistory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			apierrors.NotFound(c, "Location not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load location history", err)
		return
	}

	c.JSON(http.StatusOK, history)
}
