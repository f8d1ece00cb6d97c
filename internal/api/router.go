package api

import (
	"travel_itinerary/internal/datamanager" // Data access layer
	"travel_itinerary/internal/middleware"  // Session middlewares

	"github.com/gin-gonic/gin" // Gin web framework
)

// RouterConfig holds what the routes need besides the data manager
type RouterConfig struct {
	JWTSecret      string   // Session signing secret
	SecureCookie   bool     // Send the session cookie over HTTPS only
	TrustedProxies []string // Proxies allowed to set forwarding headers
}

// NewRouter registers every route of the service
func NewRouter(dm datamanager.DataManager, cfg RouterConfig) (*gin.Engine, error) {
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	r.GET("/", middleware.OptionalJWTMiddleware(cfg.JWTSecret), IndexHandler(dm))

	// Auth routes
	r.POST("/register", RegisterHandler(dm))
	r.POST("/login", LoginHandler(dm, cfg.JWTSecret, cfg.SecureCookie))

	// Session protected routes
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.CurrentUserMiddleware(dm))
	authed.GET("/logout", LogoutHandler(cfg.SecureCookie))
	authed.GET("/get_destinations", GetDestinationsHandler(dm))
	authed.GET("/destination/:destination_id", GetDestinationHandler(dm))
	authed.POST("/add_destination", AddDestinationHandler(dm))
	authed.POST("/update_destination/:destination_id", UpdateDestinationHandler(dm))
	authed.POST("/delete_destination/:user_id/:destination_id", DeleteDestinationHandler(dm))

	return r, nil
}
