package models

import (
	"strings"
	"time"
)

// User is an account allowed to log in and upload
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser holds the fields that may leave the server
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// IsValid reports whether the username is set
func (u *User) IsValid() bool {
	return strings.TrimSpace(u.Username) != ""
}

// PublicData returns the user without the password hash
func (u *User) PublicData() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
