package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/restaurantos/restaurant-service/internal/domain"
)

// DefaultTokenTTL is the lifetime of an access token when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrMissingSigningKey is returned when the token manager is built without a key.
var ErrMissingSigningKey = errors.New("auth: signing key is not configured")

// FailureReason classifies why a token failed verification. It is meant for
// logs and metrics only and must not be surfaced to clients.
type FailureReason string

const (
	ReasonNone        FailureReason = ""
	ReasonMissing     FailureReason = "missing"
	ReasonMalformed   FailureReason = "malformed"
	ReasonSignature   FailureReason = "signature"
	ReasonExpired     FailureReason = "expired"
	ReasonNotYetValid FailureReason = "not_yet_valid"
	ReasonClaims      FailureReason = "claims"
)

// Subject carries the identity fields embedded in a token.
type Subject struct {
	UserID       string
	Email        string
	Role         domain.Role
	RestaurantID string
}

// SubjectFromUser extracts the token subject from a stored user.
func SubjectFromUser(user *domain.User) Subject {
	return Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
	}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID       string      `json:"userId"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	RestaurantID string      `json:"restaurantId"`
	jwt.RegisteredClaims
}

// Verification is the outcome of Verify. Identity is nil unless the token is valid.
type Verification struct {
	Identity *domain.Identity
	Reason   FailureReason
}

// Valid reports whether the token passed every check.
func (v Verification) Valid() bool {
	return v.Identity != nil
}

// TokenManager handles issuing and validating JWT tokens. It holds no mutable
// state after construction and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	// the validity window is checked in Verify so both ends stay inclusive
	tm.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return tm, nil
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for the subject and returns it with its expiry.
func (tm *TokenManager) Issue(subject Subject) (string, time.Time, error) {
	issuedAt := tm.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID:       subject.UserID,
		Email:        subject.Email,
		Role:         subject.Role,
		RestaurantID: subject.RestaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token and returns its identity. Failures never panic and
// never return an error; they yield a Verification without Identity.
func (tm *TokenManager) Verify(tokenStr string) Verification {
	if tokenStr == "" {
		return Verification{Reason: ReasonMissing}
	}

	claims := &Claims{}
	parsed, err := tm.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return Verification{Reason: classify(err)}
	}
	if !parsed.Valid || claims.UserID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Verification{Reason: ReasonClaims}
	}

	now := tm.now()
	if now.Before(claims.IssuedAt.Time) {
		return Verification{Reason: ReasonNotYetValid}
	}
	if now.After(claims.ExpiresAt.Time) {
		return Verification{Reason: ReasonExpired}
	}

	return Verification{Identity: &domain.Identity{
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		RestaurantID: claims.RestaurantID,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}}
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ReasonNotYetValid
	default:
		return ReasonClaims
	}
}
