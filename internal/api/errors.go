package api

import (
	"errors"                                // Error inspection
	"net/http"                              // HTTP status codes
	"strconv"                               // Path parameter parsing
	"travel_itinerary/internal/datamanager" // Data access layer errors
	"travel_itinerary/internal/domain"      // Domain models
	"travel_itinerary/internal/middleware"  // Context keys

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// respondError maps data access errors to HTTP responses.
// Anything not recognised is a server failure and gets logged.
func respondError(c *gin.Context, err error, action string) {
	var verr *datamanager.ValidationError
	switch {
	case errors.Is(err, datamanager.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, datamanager.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
	case errors.Is(err, datamanager.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	default:
		logrus.WithFields(logrus.Fields{
			"action":  action,
			"user_id": c.GetUint(middleware.ContextUserID),
			"error":   err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// uintParam parses a positive numeric path parameter
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// currentUserID returns the session user ID set by the auth middleware
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// currentUser returns the user loaded by the current user middleware
func currentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(middleware.ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}
