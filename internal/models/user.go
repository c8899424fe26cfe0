package models

import "time"

// User is a forum member. ExternalRef links the row to the external identity
// provider; legacy REST accounts carry an email and password hash instead.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalRef    *string   `gorm:"uniqueIndex;size:255" json:"externalRef,omitempty"`
	Username       string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          *string   `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	Password       string    `gorm:"size:255" json:"-"`
	PrivateProfile bool      `gorm:"not null;default:false" json:"privateProfile"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserProfile is the public profile view.
type UserProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	PostCount int64  `json:"postCount"`
}
