// Package entity defines the domain entities for the user feature.
package entity

import "time"

// User represents a registered account.
// Email is the login identifier; the password is stored only as a bcrypt hash.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is unique across all users. Its domain part is stored lowercased.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Name is the display name.
	Name string `gorm:"size:255;not null;default:''"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// Flags have no column default; the usecase sets them on creation.
	IsActive    bool `gorm:"not null"`
	IsStaff     bool `gorm:"not null"`
	IsSuperuser bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
