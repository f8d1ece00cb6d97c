package domain

// User Model
type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`                                    // Primary key
	Username     string        `gorm:"size:80;unique;not null" json:"username"`                 // Unique username
	Email        string        `gorm:"size:120;not null" json:"email"`                          // Contact email
	Password     string        `gorm:"size:100;not null" json:"-"`                              // Bcrypt password hash
	Destinations []Destination `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // One-to-many relationship with Destination
}

// TableName keeps the table name stable across naming strategies
func (User) TableName() string {
	return "users"
}
