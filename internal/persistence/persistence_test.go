package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/domain"
)

func TestMigrationNames_Ordered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_restaurants.sql", "0002_users.sql"}, names)
}

func TestNewPostgres_NoDSN(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.New(core))
	require.NoError(t, err)
	assert.Nil(t, pg.PoolHandle())
	assert.Equal(t, StoreMemory, pg.Mode())
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrPostgresNotConfigured)
	assert.NoError(t, RunMigrations(context.Background(), pg.PoolHandle(), zap.NewNop()))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, StoreMemory, entries[0].ContextMap()["store"])
}

func TestNewPostgres_StoreModes(t *testing.T) {
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{Store: StoreMemory, DSN: "postgres://unused"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, pg.Mode())
	assert.Nil(t, pg.PoolHandle())

	_, err = NewPostgres(ctx, config.PostgresConfig{Store: StorePostgres}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingDSN)

	_, err = NewPostgres(ctx, config.PostgresConfig{Store: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}

func TestPostgres_MemoryStoresShareState(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{Store: StoreMemory}, zap.NewNop())
	require.NoError(t, err)
	stores := pg.Stores()

	restaurant := &domain.Restaurant{Name: "Bistro"}
	owner := &domain.User{Email: "owner@bistro.com", Role: domain.RoleOwner}
	require.NoError(t, stores.Tenants.CreateWithOwner(context.Background(), restaurant, owner))

	got, err := stores.Users.GetByEmail(context.Background(), "owner@bistro.com")
	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, got.RestaurantID)
}

func TestRedis_Ping(t *testing.T) {
	srv := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: srv.Addr()}, zap.NewNop())
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))

	var missing *Redis
	assert.ErrorIs(t, missing.Ping(context.Background()), ErrRedisNotConfigured)
}

func TestRedis_Key(t *testing.T) {
	srv := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: srv.Addr(), KeyPrefix: "restaurant:"}, zap.NewNop())
	defer r.Close()

	assert.Equal(t, "restaurant:login:", r.Key("login:"))

	var missing *Redis
	assert.Equal(t, "login:", missing.Key("login:"))
}
