package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restaurantos/restaurant-service/internal/domain"
)

// RestaurantRepository manages tenant records.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

type restaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a Postgres-backed implementation.
func NewRestaurantRepository(pool *pgxpool.Pool) RestaurantRepository {
	return &restaurantRepository{pool: pool}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	return insertRestaurant(ctx, r.pool, restaurant)
}

func insertRestaurant(ctx context.Context, q querier, restaurant *domain.Restaurant) error {
	const query = `
        INSERT INTO restaurants (id, name, email, phone, address, cuisine, currency, timezone)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	applyRestaurantDefaults(restaurant)

	err := q.QueryRow(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Email,
		restaurant.Phone,
		restaurant.Address,
		restaurant.Cuisine,
		restaurant.Currency,
		restaurant.Timezone,
	).Scan(&restaurant.CreatedAt, &restaurant.UpdatedAt)
	return mapPgError(err)
}

func (r *restaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	const query = `
        SELECT id, name, email, phone, address, cuisine, currency, timezone, created_at, updated_at
        FROM restaurants WHERE id=$1`

	var restaurant domain.Restaurant
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Email,
		&restaurant.Phone,
		&restaurant.Address,
		&restaurant.Cuisine,
		&restaurant.Currency,
		&restaurant.Timezone,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &restaurant, nil
}

func applyRestaurantDefaults(restaurant *domain.Restaurant) {
	if restaurant.Currency == "" {
		restaurant.Currency = "USD"
	}
	if restaurant.Timezone == "" {
		restaurant.Timezone = "UTC"
	}
}
