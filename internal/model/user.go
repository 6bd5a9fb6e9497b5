// Package model defines domain entities for the application.
package model

import "time"

// User is a registered identity. Email is unique and matched exactly.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
