package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Stores groups the repositories behind the account service.
type Stores struct {
	Users       UserRepository
	Restaurants RestaurantRepository
	Tenants     TenantRepository
}

// NewPostgresStores builds every repository on one pool.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Users:       NewUserRepository(pool),
		Restaurants: NewRestaurantRepository(pool),
		Tenants:     NewTenantRepository(pool),
	}
}

// NewMemoryStores builds in-process repositories sharing state, so tenant
// creation is visible through Users and Restaurants.
func NewMemoryStores() Stores {
	users := NewMemoryUserRepository()
	restaurants := NewMemoryRestaurantRepository()
	return Stores{
		Users:       users,
		Restaurants: restaurants,
		Tenants:     NewMemoryTenantRepository(users, restaurants),
	}
}
