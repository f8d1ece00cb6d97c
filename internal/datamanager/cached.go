package datamanager

import (
	"context"                          // Request scoped context
	"strconv"                          // Cache key formatting
	"travel_itinerary/internal/domain" // Domain models
	"travel_itinerary/internal/utils"  // Redis cache helpers

	"github.com/sirupsen/logrus" // Structured logging
)

// CachedDataManager caches destination lists in Redis in front of another DataManager.
// Cache failures are logged and never fail the wrapped operation.
type CachedDataManager struct {
	DataManager              // Wrapped data manager
	cache       *utils.Cache // Destination list cache
}

var _ DataManager = (*CachedDataManager)(nil)

// NewCachedDataManager wraps next with a destination list cache
func NewCachedDataManager(next DataManager, cache *utils.Cache) *CachedDataManager {
	return &CachedDataManager{DataManager: next, cache: cache}
}

// listKey is the cache entry holding a user's destination list
func listKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// ListDestinations serves from cache when possible and fills it on a miss.
// The fill is dropped if a mutation invalidated the list after the store read.
func (m *CachedDataManager) ListDestinations(ctx context.Context, userID uint) ([]domain.Destination, error) {
	key := listKey(userID) // Cache entry name for this user
	var cached []domain.Destination
	found, err := m.cache.Get(ctx, key, &cached) // Try the cache first
	if err != nil {
		cacheWarn(userID, err, "Destination cache read failed")
	}
	if found && cached != nil {
		return cached, nil // Cache hit
	}
	// Version must be read before the store so a concurrent invalidation is seen
	version, versionErr := m.cache.Version(ctx, key)
	if versionErr != nil {
		cacheWarn(userID, versionErr, "Destination cache version read failed")
	}
	destinations, err := m.DataManager.ListDestinations(ctx, userID) // Read the store
	if err != nil {
		return nil, err
	}
	if versionErr == nil {
		stored, err := m.cache.SetIfVersion(ctx, key, version, destinations) // Fill only if still current
		if err != nil {
			cacheWarn(userID, err, "Destination cache write failed")
		} else if !stored {
			logrus.WithFields(logrus.Fields{"user_id": userID}).Debug("Destination cache fill skipped, list changed")
		}
	}
	return destinations, nil
}

// AddDestination adds through the wrapped manager and invalidates the user's list
func (m *CachedDataManager) AddDestination(ctx context.Context, userID uint, fields NewDestination) (*domain.Destination, error) {
	destination, err := m.DataManager.AddDestination(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	m.invalidate(ctx, userID) // List changed
	return destination, nil
}

// UpdateDestination updates through the wrapped manager and invalidates the user's list
func (m *CachedDataManager) UpdateDestination(ctx context.Context, userID, destinationID uint, update DestinationUpdate) (bool, error) {
	updated, err := m.DataManager.UpdateDestination(ctx, userID, destinationID, update)
	if err != nil {
		return false, err
	}
	if updated {
		m.invalidate(ctx, userID) // List changed
	}
	return updated, nil
}

// DeleteDestination deletes through the wrapped manager and invalidates the user's list
func (m *CachedDataManager) DeleteDestination(ctx context.Context, userID, destinationID uint) (bool, error) {
	deleted, err := m.DataManager.DeleteDestination(ctx, userID, destinationID)
	if err != nil {
		return false, err
	}
	if deleted {
		m.invalidate(ctx, userID) // List changed
	}
	return deleted, nil
}

// invalidate bumps the list version and drops the cached entry
func (m *CachedDataManager) invalidate(ctx context.Context, userID uint) {
	if err := m.cache.Invalidate(ctx, listKey(userID)); err != nil {
		cacheWarn(userID, err, "Destination cache invalidation failed")
	}
}

func cacheWarn(userID uint, err error, msg string) {
	logrus.WithFields(logrus.Fields{
		"user_id": userID,      // Owner of the list
		"error":   err.Error(), // Redis error
	}).Warn(msg)
}
