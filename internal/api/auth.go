package api

import (
	"net/http"                              // HTTP status codes
	"regexp"                                // Regular expressions
	"time"                                  // Timestamps for logs
	"travel_itinerary/internal/datamanager" // Data access layer
	"travel_itinerary/internal/middleware"  // Session cookie name
	"travel_itinerary/internal/utils"       // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Request struct for registration, accepted as form or JSON
type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=80"` // Username must be provided
	Email    string `json:"email" form:"email" binding:"required,email,max=120"`      // Email must be valid
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"` // Byte limit checked on registration
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"` // Username must be provided
	Password string `json:"password" form:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // Session token, also set as a cookie
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// isValidUsername checks the username only holds letters, digits and underscores
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// RegisterHandler creates a new user account
func RegisterHandler(dm datamanager.DataManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind form or JSON request to struct
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Check username characters
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username may only contain letters, digits and underscores"})
			return
		}
		user, err := dm.RegisterUser(c.Request.Context(), req.Username, req.Email, req.Password) // Hash and store
		if err != nil {
			respondError(c, err, "register")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,
			"username":  user.Username,
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully.", "user": user})
	}
}

// LoginHandler authenticates a user and starts a session
func LoginHandler(dm datamanager.DataManager, jwtSecret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form or JSON request to struct
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := dm.Authenticate(c.Request.Context(), req.Username, req.Password) // Check credentials
		if err != nil {
			respondError(c, err, "login")
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret) // Sign session token
		if err != nil {
			respondError(c, err, "login")
			return
		}
		// Session cookie for browser clients; API clients may use the returned token
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, token, int(utils.SessionTTL.Seconds()), "/", "", secureCookie, true)
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User logged in")
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// LogoutHandler ends the session by expiring the cookie
func LogoutHandler(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c) // Loaded by the current user middleware
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secureCookie, true) // Expire the cookie
		// Audit log
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,
			"username":  user.Username,
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("User logged out")
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
