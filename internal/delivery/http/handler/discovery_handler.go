package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/usecase/discovery"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryUseCase: discoveryUseCase}
}

// Discover handles POST /discover
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req discovery.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	page, err := h.discoveryUseCase.Discover(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidFilterSpec):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "discovery failed"})
		}
		return
	}

	c.JSON(http.StatusOK, page)
}
