package domain

import "time"

// Identity is the verified content of an access token.
type Identity struct {
	UserID       string
	Email        string
	Role         Role
	RestaurantID string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
