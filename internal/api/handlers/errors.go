package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
)

// respondError translates a service error into an HTTP response. This is the
// only place the error taxonomy meets status codes; services themselves never
// shape HTTP output.
func respondError(c *gin.Context, err error) {
	if ve, ok := apperr.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Messages})
		return
	}
	if ce, ok := apperr.IsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error()})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnsupportedMedia):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case apperr.IsStorage(err):
		log.Printf("Storage failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file."})
	default:
		log.Printf("Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
	}
}
