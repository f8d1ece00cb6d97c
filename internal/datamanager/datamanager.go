// Package datamanager mediates every read and write of users and destinations.
// Destination lookups and mutations are always scoped by the owning user.
package datamanager

import (
	"context"                          // Request scoped context
	"travel_itinerary/internal/domain" // Domain models
)

// NewDestination carries the fields of a destination to add.
// A nil field is treated as missing.
type NewDestination struct {
	Name           *string `json:"name" form:"name"`
	PosterURL      *string `json:"poster_url" form:"poster_url"`
	Activities     *string `json:"activities" form:"activities"`
	Accommodations *string `json:"accommodations" form:"accommodations"`
	Transportation *string `json:"transportation" form:"transportation"`
}

// DestinationUpdate carries the mutable fields of a destination.
// Every field is written, an empty string included.
type DestinationUpdate struct {
	PosterURL      string `json:"poster_url" form:"poster_url"`
	Activities     string `json:"activities" form:"activities"`
	Accommodations string `json:"accommodations" form:"accommodations"`
	Transportation string `json:"transportation" form:"transportation"`
}

// DataManager is the set of operations available on the persistent store
type DataManager interface {
	RegisterUser(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uint) (*domain.User, error)

	ListDestinations(ctx context.Context, userID uint) ([]domain.Destination, error)
	GetDestination(ctx context.Context, userID, destinationID uint) (*domain.Destination, error)
	AddDestination(ctx context.Context, userID uint, fields NewDestination) (*domain.Destination, error)
	UpdateDestination(ctx context.Context, userID, destinationID uint, update DestinationUpdate) (bool, error)
	DeleteDestination(ctx context.Context, userID, destinationID uint) (bool, error)
}

// validate returns the first missing required field in declaration order
func (f NewDestination) validate() error {
	required := []struct {
		name  string
		value *string
	}{
		{"name", f.Name},
		{"poster_url", f.PosterURL},
		{"activities", f.Activities},
		{"accommodations", f.Accommodations},
		{"transportation", f.Transportation},
	}
	for _, r := range required {
		if r.value == nil {
			return missingField(r.name)
		}
	}
	if *f.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}
