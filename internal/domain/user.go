package domain

import "time"

// User is an account that can log into a restaurant tenant.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	RestaurantID string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
