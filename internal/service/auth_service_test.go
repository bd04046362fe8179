package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/domain"
	"github.com/restaurantos/restaurant-service/internal/events"
	"github.com/restaurantos/restaurant-service/internal/ratelimit"
	"github.com/restaurantos/restaurant-service/internal/repository"
)

type recorderStub struct {
	issued int
	logins []string
}

func (r *recorderStub) RecordTokenIssued()         { r.issued++ }
func (r *recorderStub) RecordLogin(outcome string) { r.logins = append(r.logins, outcome) }

type limiterStub struct {
	allowFn func(ctx context.Context, key string) (ratelimit.Result, error)
	resets  []string
}

func (l *limiterStub) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	if l.allowFn != nil {
		return l.allowFn(ctx, key)
	}
	return ratelimit.Result{Allowed: true}, nil
}

func (l *limiterStub) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

type fixture struct {
	svc         *AuthService
	users       *repository.MemoryUserRepository
	restaurants *repository.MemoryRestaurantRepository
	tokens      *auth.TokenManager
	limiter     *limiterStub
	recorder    *recorderStub
	dispatcher  events.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager("service-test-key", 0)
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	restaurants := repository.NewMemoryRestaurantRepository()
	f := &fixture{
		users:       users,
		restaurants: restaurants,
		tokens:      tokens,
		limiter:     &limiterStub{},
		recorder:    &recorderStub{},
		dispatcher:  events.NewInMemoryDispatcher(),
	}
	f.svc = NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
		UserRepo:       f.users,
		RestaurantRepo: f.restaurants,
		TenantRepo:     repository.NewMemoryTenantRepository(users, restaurants),
		Tokens:         tokens,
		Limiter:        f.limiter,
		Dispatcher:     f.dispatcher,
		Recorder:       f.recorder,
	})
	return f
}

func (f *fixture) registerOwner(t *testing.T) *Session {
	t.Helper()
	session, err := f.svc.Register(context.Background(), RegisterInput{
		Name:           "Owner",
		Email:          "Owner@Demo.com",
		Password:       "demo123",
		Role:           "owner",
		RestaurantName: "Bistro",
	})
	require.NoError(t, err)
	return session
}

func TestRegister_OwnerCreatesRestaurant(t *testing.T) {
	f := newFixture(t)
	var published []events.Event
	f.dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	session := f.registerOwner(t)

	assert.Equal(t, "owner@demo.com", session.User.Email)
	assert.Equal(t, domain.RoleOwner, session.User.Role)
	assert.NotEqual(t, "demo123", session.User.PasswordHash)
	assert.True(t, session.Permissions.Has(auth.PermSettingsManage))

	restaurant, err := f.restaurants.GetByID(context.Background(), session.User.RestaurantID)
	require.NoError(t, err)
	assert.Equal(t, "Bistro", restaurant.Name)

	result := f.tokens.Verify(session.Token)
	require.True(t, result.Valid())
	assert.Equal(t, session.User.ID, result.Identity.UserID)
	assert.Equal(t, session.User.RestaurantID, result.Identity.RestaurantID)
	assert.Equal(t, 1, f.recorder.issued)

	require.Len(t, published, 1)
	assert.Equal(t, session.User.ID, published[0].UserID)
}

func TestRegister_CustomerJoinsRestaurant(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)

	session, err := f.svc.Register(context.Background(), RegisterInput{
		Name:         "Guest",
		Email:        "guest@demo.com",
		Password:     "secret1",
		Role:         "customer",
		RestaurantID: owner.User.RestaurantID,
	})
	require.NoError(t, err)
	assert.Equal(t, owner.User.RestaurantID, session.User.RestaurantID)
	assert.True(t, session.Permissions.Has(auth.PermOrdersCreate))
	assert.False(t, session.Permissions.Has(auth.PermSettingsManage))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)

	cases := map[string]RegisterInput{
		"unknown role":      {Name: "A", Email: "a@demo.com", Password: "secret1", Role: "admin"},
		"staff role":        {Name: "A", Email: "a@demo.com", Password: "secret1", Role: "waiter"},
		"missing name":      {Email: "a@demo.com", Password: "secret1", Role: "owner"},
		"bad email":         {Name: "A", Email: "not-an-email", Password: "secret1", Role: "owner"},
		"short password":    {Name: "A", Email: "a@demo.com", Password: "123", Role: "owner"},
		"customer no place": {Name: "A", Email: "a@demo.com", Password: "secret1", Role: "customer"},
	}
	for name, in := range cases {
		_, err := f.svc.Register(context.Background(), in)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "%s: got %v", name, err)
	}

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@demo.com", Password: "secret1", Role: "customer", RestaurantID: "nowhere",
	})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	_, err = f.svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@demo.com", Password: "secret1", Role: "customer", RestaurantID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	_, err = f.svc.Register(context.Background(), RegisterInput{
		Name: "Again", Email: "OWNER@demo.com", Password: "secret1", Role: "customer", RestaurantID: owner.User.RestaurantID,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)

	session, err := f.svc.Login(context.Background(), "  OWNER@demo.com ", "demo123")
	require.NoError(t, err)
	assert.Equal(t, owner.User.ID, session.User.ID)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenTTL), session.ExpiresAt, 5*time.Second)
	assert.Equal(t, []string{"success"}, f.recorder.logins)
	assert.Equal(t, []string{"owner@demo.com"}, f.limiter.resets)
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	f := newFixture(t)
	f.registerOwner(t)

	_, wrongPassword := f.svc.Login(context.Background(), "owner@demo.com", "nope")
	_, unknownEmail := f.svc.Login(context.Background(), "ghost@demo.com", "demo123")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, []string{"invalid_credentials", "invalid_credentials"}, f.recorder.logins)
	assert.Empty(t, f.limiter.resets)
}

func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t)
	f.registerOwner(t)
	f.limiter.allowFn = func(context.Context, string) (ratelimit.Result, error) {
		return ratelimit.Result{Allowed: false, RetryAfter: 30 * time.Second}, nil
	}

	_, err := f.svc.Login(context.Background(), "owner@demo.com", "demo123")
	var tooMany *TooManyAttemptsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 30*time.Second, tooMany.RetryAfter)
}

func TestLogin_LimiterOutageFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.registerOwner(t)
	f.limiter.allowFn = func(context.Context, string) (ratelimit.Result, error) {
		return ratelimit.Result{}, errors.New("redis down")
	}

	_, err := f.svc.Login(context.Background(), "owner@demo.com", "demo123")
	assert.NoError(t, err)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)
	identity := f.tokens.Verify(owner.Token).Identity

	user, err := f.svc.Me(context.Background(), *identity)
	require.NoError(t, err)
	assert.Equal(t, owner.User.ID, user.ID)

	ghost := *identity
	ghost.Email = "ghost@demo.com"
	_, err = f.svc.Me(context.Background(), ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateStaffAndList(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)
	ownerID := *f.tokens.Verify(owner.Token).Identity

	waiter, err := f.svc.CreateStaff(context.Background(), ownerID, StaffInput{
		Name: "Wendy", Email: "wendy@demo.com", Password: "secret1", Role: "waiter",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.User.RestaurantID, waiter.RestaurantID)

	_, err = f.svc.CreateStaff(context.Background(), ownerID, StaffInput{
		Name: "Other", Email: "other@demo.com", Password: "secret1", Role: "owner",
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	waiterSession, err := f.svc.Login(context.Background(), "wendy@demo.com", "secret1")
	require.NoError(t, err)
	waiterID := *f.tokens.Verify(waiterSession.Token).Identity
	_, err = f.svc.CreateStaff(context.Background(), waiterID, StaffInput{
		Name: "Sneaky", Email: "sneaky@demo.com", Password: "secret1", Role: "manager",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	staff, err := f.svc.ListStaff(context.Background(), owner.User.RestaurantID)
	require.NoError(t, err)
	assert.Len(t, staff, 2)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)

	principal, reason := f.svc.Authenticate(owner.Token)
	require.NotNil(t, principal)
	assert.Equal(t, auth.ReasonNone, reason)
	assert.Equal(t, owner.User.ID, principal.Identity.UserID)
	assert.True(t, principal.Can(auth.PermStaffManage))

	foreign, err := auth.NewTokenManager("some-other-key", 0)
	require.NoError(t, err)
	forged, _, err := foreign.Issue(auth.SubjectFromUser(owner.User))
	require.NoError(t, err)

	principal, reason = f.svc.Authenticate(forged)
	assert.Nil(t, principal)
	assert.Equal(t, auth.ReasonSignature, reason)

	principal, reason = f.svc.Authenticate("not-a-token")
	assert.Nil(t, principal)
	assert.Equal(t, auth.ReasonMalformed, reason)
}

// staleEmailLookup hides existing accounts from the pre-insert email check, as
// happens when two registrations for one email race.
type staleEmailLookup struct {
	repository.UserRepository
}

func (staleEmailLookup) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func TestRegister_OwnerDuplicateLeavesNoRestaurant(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	restaurants := repository.NewMemoryRestaurantRepository()
	tokens, err := auth.NewTokenManager("service-test-key", 0)
	require.NoError(t, err)
	svc := NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
		UserRepo:       staleEmailLookup{users},
		RestaurantRepo: restaurants,
		TenantRepo:     repository.NewMemoryTenantRepository(users, restaurants),
		Tokens:         tokens,
	})

	in := RegisterInput{Name: "Owner", Email: "owner@demo.com", Password: "demo123", Role: "owner"}
	_, err = svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 1, restaurants.Count())

	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, restaurants.Count())
}

func TestListStaff_ExcludesCustomers(t *testing.T) {
	f := newFixture(t)
	owner := f.registerOwner(t)
	ownerID := *f.tokens.Verify(owner.Token).Identity

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "Guest", Email: "guest@x.com", Password: "secret1", Role: "customer", RestaurantID: owner.User.RestaurantID,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateStaff(context.Background(), ownerID, StaffInput{
		Name: "Kim", Email: "kim@demo.com", Password: "secret1", Role: "kitchen",
	})
	require.NoError(t, err)

	staff, err := f.svc.ListStaff(context.Background(), owner.User.RestaurantID)
	require.NoError(t, err)

	emails := make([]string, 0, len(staff))
	for _, u := range staff {
		emails = append(emails, u.Email)
		assert.NotEqual(t, domain.RoleCustomer, u.Role)
	}
	assert.ElementsMatch(t, []string{"owner@demo.com", "kim@demo.com"}, emails)
}
