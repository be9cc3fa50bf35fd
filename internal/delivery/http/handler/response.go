package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the shared error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func requesterID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	return id, true
}
