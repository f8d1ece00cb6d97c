package middleware

import (
	"errors"                                // Error inspection
	"net/http"                              // HTTP status codes
	"travel_itinerary/internal/datamanager" // Data access layer

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// CurrentUserMiddleware reloads the session user from the database on each request
func CurrentUserMiddleware(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID) // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		user, err := dm.GetUser(c.Request.Context(), userID.(uint))
		if errors.Is(err, datamanager.ErrNotFound) {
			// The account behind a still valid token is gone
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to load session user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(ContextUser, user) // Store the loaded user
		c.Next()
	}
}
