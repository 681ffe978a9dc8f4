package models

import (
	"time"
)

// Minimum credential lengths accepted at signup.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// User is a registered diver.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserSummary is the short form of a user shown in lists and feeds.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

// Summary returns the list form of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL}
}

// ProfileUpdate holds the editable profile fields. Empty image URLs keep the
// current value.
type ProfileUpdate struct {
	Username       string `json:"username"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
}
