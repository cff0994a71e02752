package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ivm-inventory/internal/insightvm"

	"github.com/gin-gonic/gin"
)

// respondError — единый формат ошибок API: {"error": "..."}.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// scannerErrorStatus переводит ошибку клиента сканера в статус нашего API.
func scannerErrorStatus(err error) int {
	var apiErr *insightvm.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}

	switch apiErr.Kind {
	case insightvm.ErrNotFound:
		return http.StatusNotFound
	case insightvm.ErrInvalidRequest:
		return http.StatusBadRequest
	case insightvm.ErrRateLimited:
		return http.StatusTooManyRequests
	case insightvm.ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		// unauthorized / forbidden / connection_failed / upstream_unavailable /
		// malformed_response — для вызывающего это сбой на стороне сканера
		return http.StatusBadGateway
	}
}

// parseID разбирает числовой path-параметр.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
