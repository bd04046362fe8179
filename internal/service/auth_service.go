package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/domain"
	"github.com/restaurantos/restaurant-service/internal/events"
	"github.com/restaurantos/restaurant-service/internal/ratelimit"
	"github.com/restaurantos/restaurant-service/internal/repository"
)

// AuthRecorder receives auth metrics.
type AuthRecorder interface {
	RecordTokenIssued()
	RecordLogin(outcome string)
}

// Session is the result of a successful register or login.
type Session struct {
	User        *domain.User
	Token       string
	ExpiresAt   time.Time
	Permissions auth.PermissionSet
}

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	Phone          string
	RestaurantName string
	RestaurantID   string
}

// StaffInput carries a staff account created by an owner.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	restaurants repository.RestaurantRepository
	tenants     repository.TenantRepository
	tokens      *auth.TokenManager
	limiter     ratelimit.Limiter
	dispatcher  events.Dispatcher
	recorder    AuthRecorder
	logger      *zap.Logger
	bcryptCost  int
	dummyHash   string
}

// AuthDependencies encapsulates collaborators of the auth service. Limiter,
// Dispatcher, Recorder and Logger are optional.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	RestaurantRepo repository.RestaurantRepository
	TenantRepo     repository.TenantRepository
	Tokens         *auth.TokenManager
	Limiter        ratelimit.Limiter
	Dispatcher     events.Dispatcher
	Recorder       AuthRecorder
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// compared against when the email is unknown so both paths cost one bcrypt run
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)

	return &AuthService{
		users:       deps.UserRepo,
		restaurants: deps.RestaurantRepo,
		tenants:     deps.TenantRepo,
		tokens:      deps.Tokens,
		limiter:     deps.Limiter,
		dispatcher:  deps.Dispatcher,
		recorder:    deps.Recorder,
		logger:      logger,
		bcryptCost:  cost,
		dummyHash:   string(dummy),
	}
}

// Register creates a new account. Owners get a new restaurant; customers join an existing one.
// Staff roles are created by owners through CreateStaff.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, invalid("role", "must be one of owner, manager, waiter, kitchen, customer")
	}
	if role != domain.RoleOwner && role != domain.RoleCustomer {
		return nil, invalid("role", "staff accounts are created by the restaurant owner")
	}

	email, err := s.validateAccount(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}

	var restaurantName string
	switch role {
	case domain.RoleOwner:
		restaurantName = strings.TrimSpace(in.RestaurantName)
		if restaurantName == "" {
			restaurantName = user.Name + "'s Restaurant"
		}
		restaurant := &domain.Restaurant{Name: restaurantName, Email: email, Phone: user.Phone}
		err = s.tenants.CreateWithOwner(ctx, restaurant, user)
	default:
		restaurantID := strings.TrimSpace(in.RestaurantID)
		if restaurantID == "" {
			return nil, invalid("restaurantId", "is required")
		}
		if _, perr := uuid.Parse(restaurantID); perr != nil {
			return nil, ErrRestaurantNotFound
		}
		if _, gerr := s.restaurants.GetByID(ctx, restaurantID); gerr != nil {
			if errors.Is(gerr, repository.ErrNotFound) {
				return nil, ErrRestaurantNotFound
			}
			return nil, gerr
		}
		user.RestaurantID = restaurantID
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user, events.UserRegisteredPayload{
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		RestaurantName: restaurantName,
	})
	return session, nil
}

// CreateStaff adds a staff account to the actor's restaurant.
func (s *AuthService) CreateStaff(ctx context.Context, actor domain.Identity, in StaffInput) (*domain.User, error) {
	if !auth.Resolve(actor.Role).Has(auth.PermStaffManage) {
		return nil, ErrForbidden
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || !role.IsStaff() || role == domain.RoleOwner {
		return nil, invalid("role", "must be one of manager, waiter, kitchen")
	}

	email, err := s.validateAccount(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		RestaurantID: actor.RestaurantID,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user, events.UserRegisteredPayload{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	return user, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email", "email and password are required")
	}

	if err := s.throttle(ctx, email); err != nil {
		s.recordLogin("throttled")
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.ComparePassword(s.dummyHash, password)
			s.recordLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("login limiter reset failed", zap.Error(err))
		}
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.recordLogin("success")
	s.publish(ctx, events.EventUserLoggedIn, user, events.UserLoggedInPayload{Email: user.Email, Role: user.Role})
	return session, nil
}

// Me returns the stored account behind a verified identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.ID != identity.UserID {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListStaff lists the staff accounts of a restaurant. Customers of the
// restaurant are not included.
func (s *AuthService) ListStaff(ctx context.Context, restaurantID string) ([]domain.User, error) {
	users, err := s.users.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	staff := users[:0]
	for _, user := range users {
		if user.Role.IsStaff() {
			staff = append(staff, user)
		}
	}
	return staff, nil
}

// Authenticate verifies a raw token and resolves the caller's permissions.
// The failure reason is returned for logging only; callers must not expose it.
func (s *AuthService) Authenticate(token string) (*auth.Principal, auth.FailureReason) {
	result := s.tokens.Verify(token)
	if !result.Valid() {
		return nil, result.Reason
	}
	return &auth.Principal{
		Identity:    *result.Identity,
		Permissions: auth.Resolve(result.Identity.Role),
	}, auth.ReasonNone
}

func (s *AuthService) validateAccount(ctx context.Context, name, rawEmail, password string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalid("name", "is required")
	}
	email := normalizeEmail(rawEmail)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", invalid("email", "must be a valid address")
	}
	if len(password) < auth.MinPasswordLength {
		return "", invalid("password", "must be at least 6 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	return email, nil
}

func (s *AuthService) throttle(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
	if !res.Allowed {
		return &TooManyAttemptsError{RetryAfter: res.RetryAfter}
	}
	return nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(auth.SubjectFromUser(user))
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordTokenIssued()
	}
	return &Session{
		User:        user,
		Token:       token,
		ExpiresAt:   exp,
		Permissions: auth.Resolve(user.Role),
	}, nil
}

func (s *AuthService) recordLogin(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordLogin(outcome)
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		RestaurantID: user.RestaurantID,
		UserID:       user.ID,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
