package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/restaurantos/restaurant-service/internal/domain"
)

// MemoryUserRepository is an in-process UserRepository used when no database is configured.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(user)
}

func (r *MemoryUserRepository) emailTakenLocked(email string) bool {
	_, exists := r.byEmail[strings.ToLower(email)]
	return exists
}

func (r *MemoryUserRepository) createLocked(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0)
	for _, user := range r.byID {
		if user.RestaurantID == restaurantID {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

// MemoryRestaurantRepository is an in-process RestaurantRepository.
type MemoryRestaurantRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.Restaurant
}

// NewMemoryRestaurantRepository returns an empty store.
func NewMemoryRestaurantRepository() *MemoryRestaurantRepository {
	return &MemoryRestaurantRepository{byID: make(map[string]domain.Restaurant)}
}

func (r *MemoryRestaurantRepository) Create(_ context.Context, restaurant *domain.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(restaurant)
}

// Count returns the number of stored restaurants.
func (r *MemoryRestaurantRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRestaurantRepository) createLocked(restaurant *domain.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	if _, exists := r.byID[restaurant.ID]; exists {
		return ErrDuplicate
	}
	applyRestaurantDefaults(restaurant)
	now := time.Now().UTC()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now

	r.byID[restaurant.ID] = *restaurant
	return nil
}

func (r *MemoryRestaurantRepository) GetByID(_ context.Context, id string) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	restaurant, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &restaurant, nil
}

// MemoryTenantRepository writes a restaurant and its owner under both stores' locks.
type MemoryTenantRepository struct {
	users       *MemoryUserRepository
	restaurants *MemoryRestaurantRepository
}

// NewMemoryTenantRepository returns a TenantRepository over the given stores.
func NewMemoryTenantRepository(users *MemoryUserRepository, restaurants *MemoryRestaurantRepository) *MemoryTenantRepository {
	return &MemoryTenantRepository{users: users, restaurants: restaurants}
}

func (r *MemoryTenantRepository) CreateWithOwner(_ context.Context, restaurant *domain.Restaurant, owner *domain.User) error {
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	r.restaurants.mu.Lock()
	defer r.restaurants.mu.Unlock()

	if r.users.emailTakenLocked(owner.Email) {
		return ErrDuplicate
	}
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	if _, exists := r.restaurants.byID[restaurant.ID]; exists {
		return ErrDuplicate
	}
	owner.RestaurantID = restaurant.ID
	if owner.ID == "" {
		owner.ID = uuid.NewString()
	}
	if _, exists := r.users.byID[owner.ID]; exists {
		return ErrDuplicate
	}

	if err := r.restaurants.createLocked(restaurant); err != nil {
		return err
	}
	return r.users.createLocked(owner)
}
