package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/usecase/swipe"
)

type SwipeHandler struct {
	swipeUseCase *swipe.SwipeUseCase
}

func NewSwipeHandler(swipeUseCase *swipe.SwipeUseCase) *SwipeHandler {
	return &SwipeHandler{swipeUseCase: swipeUseCase}
}

// CreateSwipe handles POST /swipe
func (h *SwipeHandler) CreateSwipe(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req swipe.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.swipeUseCase.RecordAction(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCannotSwipeSelf), errors.Is(err, domain.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "target profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to record swipe"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UndoSwipe handles POST /swipe/undo
func (h *SwipeHandler) UndoSwipe(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	resp, err := h.swipeUseCase.UndoLast(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUndoNotAllowed):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrNothingToUndo):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to undo swipe"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
