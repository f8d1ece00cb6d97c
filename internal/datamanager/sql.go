package datamanager

import (
	"context"                          // Request scoped context
	"errors"                           // Error inspection
	"strings"                          // Username normalisation
	"sync"                             // Lazy dummy hash
	"travel_itinerary/internal/domain" // Domain models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// SQLDataManager implements DataManager on top of a GORM connection
type SQLDataManager struct {
	db        *gorm.DB  // Database handle
	hashCost  int       // Bcrypt cost used for new passwords
	dummyOnce sync.Once // Guards dummyHash
	dummyHash []byte    // Compared against when the username is unknown
}

var _ DataManager = (*SQLDataManager)(nil)

// Option configures a SQLDataManager
type Option func(*SQLDataManager)

// WithHashCost overrides the bcrypt cost used when registering users
func WithHashCost(cost int) Option {
	return func(m *SQLDataManager) {
		m.hashCost = cost
	}
}

// NewSQLDataManager returns a data manager backed by db
func NewSQLDataManager(db *gorm.DB, opts ...Option) *SQLDataManager {
	m := &SQLDataManager{db: db, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(m) // Apply each option
	}
	return m
}

// RegisterUser creates a user with a lower-cased username and a hashed password
func (m *SQLDataManager) RegisterUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	// The limit is in bytes, multibyte characters count several times
	if len([]byte(password)) > MaxPasswordBytes {
		return nil, &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.hashCost) // Hash the password
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	if err != nil {
		return nil, storageErr("hash password", err)
	}
	user := domain.User{
		Username: strings.ToLower(username), // Usernames are case-insensitive
		Email:    email,                     // Contact email
		Password: string(hash),              // Only the hash is stored
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64 // Existing users with this name
		if err := tx.Model(&domain.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return storageErr("count users", err)
		}
		if count > 0 {
			return ErrUsernameTaken // Username already registered
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken // Lost a race on the unique index
			}
			return storageErr("create user", err)
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the password against the stored hash
func (m *SQLDataManager) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User // Fetch user from database
	err := m.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Spend the same bcrypt work as for a known user
		_ = bcrypt.CompareHashAndPassword(m.unknownUserHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageErr("find user", err)
	}
	// CompareHashAndPassword runs in constant time
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// unknownUserHash returns a hash at the configured cost that no password matches
func (m *SQLDataManager) unknownUserHash() []byte {
	m.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("unknown user placeholder"), m.hashCost)
		if err == nil {
			m.dummyHash = hash // Reused for every unknown username
		}
	})
	return m.dummyHash
}

// GetUser fetches a user by id
func (m *SQLDataManager) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User // User struct to hold data
	err := m.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound // No such user
	}
	if err != nil {
		return nil, storageErr("get user", err)
	}
	return &user, nil
}

// ListDestinations returns the user's destinations in insertion order
func (m *SQLDataManager) ListDestinations(ctx context.Context, userID uint) ([]domain.Destination, error) {
	destinations := make([]domain.Destination, 0) // Empty, never nil, when the user has none
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&destinations).Error; err != nil {
		return nil, storageErr("list destinations", err)
	}
	return destinations, nil
}

// GetDestination fetches one destination owned by the user
func (m *SQLDataManager) GetDestination(ctx context.Context, userID, destinationID uint) (*domain.Destination, error) {
	return findOwned(m.db.WithContext(ctx), userID, destinationID)
}

// AddDestination persists a new destination for an existing user
func (m *SQLDataManager) AddDestination(ctx context.Context, userID uint, fields NewDestination) (*domain.Destination, error) {
	var destination domain.Destination // Row to insert
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User // Owner must exist
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound // Unknown owner
			}
			return storageErr("get user", err)
		}
		if err := fields.validate(); err != nil {
			return err // Missing required field
		}
		destination = domain.Destination{
			Name:           *fields.Name,           // Destination name
			PosterURL:      *fields.PosterURL,      // Poster image URL
			Activities:     *fields.Activities,     // Activities
			Accommodations: *fields.Accommodations, // Accommodations
			Transportation: *fields.Transportation, // Transportation
			UserID:         &user.ID,               // Owner
		}
		if err := tx.Create(&destination).Error; err != nil {
			return storageErr("create destination", err)
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err
	}
	return &destination, nil
}

// UpdateDestination overwrites the four mutable fields; name is left untouched
func (m *SQLDataManager) UpdateDestination(ctx context.Context, userID, destinationID uint, update DestinationUpdate) (bool, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		destination, err := findOwned(tx, userID, destinationID) // Scoped lookup
		if err != nil {
			return err
		}
		// A map is used so that empty strings are written too
		err = tx.Model(destination).Updates(map[string]any{
			"poster_url":     update.PosterURL,
			"activities":     update.Activities,
			"accommodations": update.Accommodations,
			"transportation": update.Transportation,
		}).Error
		if err != nil {
			return storageErr("update destination", err)
		}
		return nil // Commit transaction
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil // Nothing to update
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteDestination removes a destination owned by the user
func (m *SQLDataManager) DeleteDestination(ctx context.Context, userID, destinationID uint) (bool, error) {
	result := m.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", destinationID, userID). // Scoped by owner
		Delete(&domain.Destination{})
	if result.Error != nil {
		return false, storageErr("delete destination", result.Error)
	}
	return result.RowsAffected > 0, nil // False when nothing matched
}

// findOwned loads a destination by (user_id, id)
func findOwned(db *gorm.DB, userID, destinationID uint) (*domain.Destination, error) {
	var destination domain.Destination // Destination struct to hold data
	err := db.Where("id = ? AND user_id = ?", destinationID, userID).First(&destination).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound // Missing or owned by someone else
	}
	if err != nil {
		return nil, storageErr("get destination", err)
	}
	return &destination, nil
}
