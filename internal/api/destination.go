package api

import (
	"errors"                                // Error inspection
	"net/http"                              // HTTP status codes
	"time"                                  // Timestamps for logs
	"travel_itinerary/internal/datamanager" // Data access layer
	"travel_itinerary/internal/domain"      // Domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// IndexHandler describes the service and the logged in user, if any
func IndexHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"service": "travel itineraries"} // Base response
		userID, ok := currentUserID(c)                 // Set only when a valid session was sent
		if !ok {
			c.JSON(http.StatusOK, resp)
			return
		}
		user, err := dm.GetUser(c.Request.Context(), userID) // Reload the session user
		switch {
		case err == nil:
			resp["current_user"] = user // Show who is logged in
		case errors.Is(err, datamanager.ErrNotFound):
			// Account was removed, the page is served anonymously
		default:
			// Storage failure, the page is still served anonymously
			logrus.WithFields(logrus.Fields{
				"action":    "index",
				"user_id":   userID,
				"error":     err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
			}).Error("Failed to load current user")
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetDestinationsHandler lists the current user's destinations
func GetDestinationsHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		destinations, err := dm.ListDestinations(c.Request.Context(), userID) // Owned destinations only
		if err != nil {
			respondError(c, err, "list_destinations")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "destinations": destinations})
	}
}

// GetDestinationHandler returns one of the current user's destinations
func GetDestinationHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		destinationID, ok := uintParam(c, "destination_id") // Parse path parameter
		if !ok {
			// Not a positive number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination id"})
			return
		}
		destination, err := dm.GetDestination(c.Request.Context(), userID, destinationID) // Scoped lookup
		if err != nil {
			respondError(c, err, "get_destination")
			return
		}
		c.JSON(http.StatusOK, gin.H{"destination": destination})
	}
}

// AddDestinationHandler adds a destination to the current user's list
func AddDestinationHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		var req datamanager.NewDestination // Bind form or JSON request
		// Validate request
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Name is the one field that may not be empty
		if req.Name == nil || *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a destination.", "field": "name"})
			return
		}
		destination, err := dm.AddDestination(c.Request.Context(), userID, req) // Persist destination
		if err != nil {
			respondError(c, err, "add_destination")
			return
		}
		logDestination(userID, destination, "add_destination").Info("Destination added") // Audit log
		c.JSON(http.StatusCreated, gin.H{"message": "Destination added", "destination": destination})
	}
}

// UpdateDestinationHandler overwrites the mutable fields of a destination
func UpdateDestinationHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		destinationID, ok := uintParam(c, "destination_id") // Parse path parameter
		if !ok {
			// Not a positive number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination id"})
			return
		}
		var req datamanager.DestinationUpdate // Bind form or JSON request
		// Validate request
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Poster URL is required on update
		if req.PosterURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a poster URL.", "field": "poster_url"})
			return
		}
		updated, err := dm.UpdateDestination(c.Request.Context(), userID, destinationID, req) // Scoped update
		if err != nil {
			respondError(c, err, "update_destination")
			return
		}
		// Missing or owned by another user
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination not found"})
			return
		}
		// Audit log
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"destination_id": destinationID,
			"type":           "update_destination",
			"timestamp":      time.Now().Format(time.RFC3339),
		}).Info("Destination updated")
		c.JSON(http.StatusOK, gin.H{"message": "Destination updated"})
	}
}

// DeleteDestinationHandler removes a destination; the path user must be the session user
func DeleteDestinationHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		pathUserID, okUser := uintParam(c, "user_id")          // Owner named in the path
		destinationID, okDest := uintParam(c, "destination_id") // Destination to remove
		if !okUser || !okDest {
			// Not positive numbers, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination id"})
			return
		}
		// Another user's list looks exactly like a missing destination
		if pathUserID != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination not found"})
			return
		}
		deleted, err := dm.DeleteDestination(c.Request.Context(), userID, destinationID) // Scoped delete
		if err != nil {
			respondError(c, err, "delete_destination")
			return
		}
		// Nothing matched
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination not found"})
			return
		}
		// Audit log
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"destination_id": destinationID,
			"type":           "delete_destination",
			"timestamp":      time.Now().Format(time.RFC3339),
		}).Info("Destination deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Destination deleted"})
	}
}

// logDestination builds the audit entry for a destination change
func logDestination(userID uint, d *domain.Destination, action string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"destination_id": d.ID,
		"name":           d.Name,
		"type":           action,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
