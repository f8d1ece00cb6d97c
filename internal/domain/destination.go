package domain

// Destination Model
type Destination struct {
	ID             uint   `gorm:"primaryKey" json:"id"`           // Primary key
	Name           string `gorm:"size:120;not null" json:"name"`  // Destination name, immutable after creation
	PosterURL      string `gorm:"size:200" json:"poster_url"`     // Poster image URL
	Activities     string `gorm:"size:200" json:"activities"`     // Free-text activities
	Accommodations string `gorm:"size:200" json:"accommodations"` // Free-text accommodations
	Transportation string `gorm:"size:200" json:"transportation"` // Free-text transportation notes
	UserID         *uint  `gorm:"index" json:"user_id"`           // Foreign key to User (owner)
}

// TableName matches the legacy singular table name
func (Destination) TableName() string {
	return "destination"
}
