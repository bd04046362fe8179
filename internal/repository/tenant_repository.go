package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restaurantos/restaurant-service/internal/domain"
)

// TenantRepository opens a restaurant together with its owner account. Either
// both rows are written or neither is.
type TenantRepository interface {
	CreateWithOwner(ctx context.Context, restaurant *domain.Restaurant, owner *domain.User) error
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository returns a Postgres-backed implementation.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) CreateWithOwner(ctx context.Context, restaurant *domain.Restaurant, owner *domain.User) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = insertRestaurant(ctx, tx, restaurant); err != nil {
		return err
	}
	owner.RestaurantID = restaurant.ID
	if err = insertUser(ctx, tx, owner); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
