package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/domain"
	"github.com/restaurantos/restaurant-service/internal/repository"
)

// DemoPassword is the password of the seeded demo accounts.
const DemoPassword = "demo123"

// Seeder creates the demo tenant used by local environments.
type Seeder struct {
	stores     repository.Stores
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder builds a seeder.
func NewSeeder(stores repository.Stores, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{stores: stores, bcryptCost: bcryptCost, logger: logger}
}

// SeedDemo creates "Demo Restaurant" with an owner and a manager unless the
// owner account already exists. It returns the demo restaurant id.
func (s *Seeder) SeedDemo(ctx context.Context) (string, error) {
	existing, err := s.stores.Users.GetByEmail(ctx, "owner@demo.com")
	if err == nil {
		return existing.RestaurantID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	restaurant := &domain.Restaurant{
		Name:     "Demo Restaurant",
		Email:    "info@demorestaurant.com",
		Phone:    "+1 (555) 123-4567",
		Address:  "123 Main St, City, State 12345",
		Cuisine:  "American",
		Currency: "USD",
		Timezone: "America/New_York",
	}
	hash, err := auth.HashPassword(DemoPassword, s.bcryptCost)
	if err != nil {
		return "", err
	}

	owner := &domain.User{Email: "owner@demo.com", Name: "Restaurant Owner", Role: domain.RoleOwner, PasswordHash: hash}
	if err := s.stores.Tenants.CreateWithOwner(ctx, restaurant, owner); err != nil {
		return "", err
	}

	manager := &domain.User{
		Email:        "manager@demo.com",
		Name:         "Restaurant Manager",
		Role:         domain.RoleManager,
		RestaurantID: restaurant.ID,
		PasswordHash: hash,
	}
	if err := s.stores.Users.Create(ctx, manager); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return "", err
	}

	s.logger.Info("demo tenant seeded", zap.String("restaurant_id", restaurant.ID))
	return restaurant.ID, nil
}
