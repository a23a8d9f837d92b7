package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wstorey/web615-lab9/internal/models"
	"github.com/wstorey/web615-lab9/internal/storage"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials covers both unknown emails and wrong
	// passwords so the two are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidSession is returned for missing, unknown or expired
	// session tokens.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Service implements password verification and session tracking on top
// of the user store.
type Service struct {
	store       storage.Store
	cost        int
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewService(store storage.Store, cost int, sessionTTL, rememberTTL time.Duration) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:       store,
		cost:        cost,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a user with a hashed password. A duplicate email
// surfaces as a validation error, not a storage error.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	user := models.NewUser(email)

	errs := models.ValidationErrors{}
	var userErrs models.ValidationErrors
	if errors.As(user.Validate(), &userErrs) {
		for field, messages := range userErrs {
			errs[field] = messages
		}
	}
	if password == "" {
		errs.Add("password", "can't be blank")
	} else if len(password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("is too short (minimum is %d characters)", minPasswordLength))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateIdentifier) {
			taken := models.ValidationErrors{}
			taken.Add("email", "has already been taken")
			return nil, taken
		}
		return nil, err
	}

	return user, nil
}

// Login verifies the credential and establishes a session: a fresh
// session token with the configured TTL, plus a longer-lived remember
// token. Trackable columns are bumped the way the original platform
// recorded sign-ins.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, models.NewUser(email).Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expires := now.Add(s.sessionTTL)

	user.SessionToken = uuid.NewString()
	user.SessionExpiresAt = &expires
	if user.RememberToken == "" {
		user.RememberToken = uuid.NewString()
	}
	user.SignInCount++
	user.LastSignInAt = user.CurrentSignInAt
	user.CurrentSignInAt = &now
	user.LastSeenAt = &now

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate resolves a session token to its user, enforcing expiry
// and refreshing last-seen tracking.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	now := time.Now()
	if !user.SessionValid(now) {
		return nil, ErrInvalidSession
	}

	user.LastSeenAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Refresh mints a new session for a user presenting a remember token.
func (s *Service) Refresh(ctx context.Context, rememberToken string) (*models.User, error) {
	if rememberToken == "" {
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserByRememberToken(ctx, rememberToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	now := time.Now()
	expires := now.Add(s.sessionTTL)
	user.SessionToken = uuid.NewString()
	user.SessionExpiresAt = &expires
	user.LastSeenAt = &now

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Logout clears the session token. The remember token survives until
// its own expiry so the client can re-establish a session later.
func (s *Service) Logout(ctx context.Context, token string) error {
	user, err := s.store.GetUserBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	user.SessionToken = ""
	user.SessionExpiresAt = nil

	return s.store.UpdateUser(ctx, user)
}

// RememberTTL is exposed so the web layer can set cookie lifetimes.
func (s *Service) RememberTTL() time.Duration {
	return s.rememberTTL
}

func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}
