// Package model defines domain entities for the application.
package model

import "time"

// User is a ledger owner. Users are created by registration and never
// mutated by the ledger itself.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
