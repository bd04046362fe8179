package dto

import (
	"time"

	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/domain"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Phone          string `json:"phone"`
	RestaurantName string `json:"restaurantName"`
	RestaurantID   string `json:"restaurantId"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateStaffRequest payload for owners adding staff.
type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RestaurantID string    `json:"restaurantId"`
	Phone        string    `json:"phone,omitempty"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// PermissionsResponse lists the caller's permissions.
type PermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		RestaurantID: user.RestaurantID,
		Phone:        user.Phone,
		Permissions:  auth.Resolve(user.Role).Strings(),
		CreatedAt:    user.CreatedAt,
	}
}
