package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/pagination"
	"github.com/amora-app/amora-backend/internal/usecase/matches"
)

type MatchHandler struct {
	matchesUseCase *matches.MatchesUseCase
}

func NewMatchHandler(matchesUseCase *matches.MatchesUseCase) *MatchHandler {
	return &MatchHandler{matchesUseCase: matchesUseCase}
}

// ListPaginated handles GET /matches/paginated
func (h *MatchHandler) ListPaginated(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	dir, err := pagination.ParseDirection(c.Query("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid direction"})
		return
	}

	page, err := h.matchesUseCase.List(c.Request.Context(), userID, c.Query("cursor"), limit, dir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list matches"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetByID handles GET /matches/:id
func (h *MatchHandler) GetByID(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	matchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || matchID < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid match id"})
		return
	}

	item, err := h.matchesUseCase.Get(c.Request.Context(), userID, matchID)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load match"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// UnmatchRequest identifies the counterpart to unmatch.
type UnmatchRequest struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

// Unmatch handles POST /matches/unmatch
func (h *MatchHandler) Unmatch(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req UnmatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.matchesUseCase.Unmatch(c.Request.Context(), userID, req.TargetID); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to unmatch"})
		return
	}

	c.Status(http.StatusNoContent)
}
