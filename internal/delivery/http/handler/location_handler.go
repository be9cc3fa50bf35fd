package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/usecase/location"
)

type LocationHandler struct {
	locationUseCase *location.LocationUseCase
}

func NewLocationHandler(locationUseCase *location.LocationUseCase) *LocationHandler {
	return &LocationHandler{locationUseCase: locationUseCase}
}

// UpdateLocationRequest carries new coordinates.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lon float64 `json:"lon" binding:"min=-180,max=180"`
}

// UpdateLocation handles PUT /location
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.locationUseCase.UpdateLocation(c.Request.Context(), userID, req.Lat, req.Lon); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update location"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// VisibilityRequest toggles incognito mode.
type VisibilityRequest struct {
	Incognito *bool `json:"incognito" binding:"required"`
}

// GetVisibility handles GET /visibility
func (h *LocationHandler) GetVisibility(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	incognito, err := h.locationUseCase.Visibility(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read visibility"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"incognito": incognito})
}

// SetVisibility handles PUT /visibility
func (h *LocationHandler) SetVisibility(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.locationUseCase.SetVisibility(c.Request.Context(), userID, *req.Incognito); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update visibility"})
		return
	}

	c.Status(http.StatusNoContent)
}
