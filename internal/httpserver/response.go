package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pizzashack/internal/domain"
)

// respondError maps service errors onto one consistent status scheme:
// 400 validation, 401 auth, 404 missing record, 409 conflict, 500 the rest.
// Internal details never reach the client; upstream gateway failures keep
// their status in the message.
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "record already exists"})
	case errors.Is(err, domain.ErrNoChange):
		c.JSON(http.StatusConflict, gin.H{"error": "no change in basket"})
	case errors.Is(err, domain.ErrCheckedOut):
		c.JSON(http.StatusConflict, gin.H{"error": "basket already checked out"})
	case errors.As(err, &ue):
		c.JSON(http.StatusInternalServerError, gin.H{"error": ue.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
