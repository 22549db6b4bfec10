package models

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // stored lowercase, unique
	PasswordHash string    `json:"-"`     // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}
