package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inkwell/inkwell-go/internal/apperr"
	"github.com/inkwell/inkwell-go/internal/crypto"
	"github.com/inkwell/inkwell-go/internal/model"
	"github.com/inkwell/inkwell-go/internal/repository"
)

// invalidCredentialsMsg is deliberately the same for unknown emails and
// wrong passwords, so callers cannot probe which accounts exist.
const invalidCredentialsMsg = "invalid email or password"

// ThrottlePolicy bounds failed logins per email: at or above MaxAttempts
// failures within Window, further logins are rejected.
type ThrottlePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// AuthService handles registration, login throttling, credential
// verification and profile retrieval.
type AuthService struct {
	users    UserStore
	attempts AttemptStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	throttle ThrottlePolicy
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, attempts AttemptStore, hasher PasswordHasher, tokens TokenIssuer, throttle ThrottlePolicy) *AuthService {
	return &AuthService{
		users:    users,
		attempts: attempts,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
	}
}

// Register creates a new user account and returns an auth token. Email
// syntax and password strength are enforced by the request-validation layer;
// the duplicate-email check is still defended here at write time.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return model.AuthResponse{}, apperr.Conflict("user already exists")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		slog.Error("register: user lookup failed", "email", req.Email, "error", err)
		return model.AuthResponse{}, apperr.Internal("could not register user", err)
	}

	// Hashing precedes the write: a hash failure leaves no partial state.
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		slog.Error("register: password hashing failed", "email", req.Email, "error", err)
		return model.AuthResponse{}, apperr.Internal("could not register user", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, apperr.Conflict("user already exists")
		}
		slog.Error("register: user insert failed", "email", req.Email, "error", err)
		return model.AuthResponse{}, apperr.Internal("could not register user", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  publicUser(user),
	}, nil
}

// Login authenticates a user and returns an auth token. The throttle gate
// runs strictly before any credential work, and exactly one attempt row is
// recorded per invocation regardless of outcome.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, clientIP string) (model.AuthResponse, error) {
	if err := s.checkThrottle(ctx, req.Email); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordAttempt(ctx, req.Email, clientIP, "", false)
			return model.AuthResponse{}, apperr.Unauthorized(invalidCredentialsMsg)
		}
		slog.Error("login: user lookup failed", "email", req.Email, "error", err)
		return model.AuthResponse{}, apperr.Internal("could not log in", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("login: password verification failed", "email", req.Email, "error", err)
		return model.AuthResponse{}, apperr.Internal("could not log in", err)
	}
	if !match {
		s.recordAttempt(ctx, req.Email, clientIP, "", false)
		return model.AuthResponse{}, apperr.Unauthorized(invalidCredentialsMsg)
	}

	s.recordAttempt(ctx, req.Email, clientIP, user.ID, true)

	token, err := s.issueToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  publicUser(user),
	}, nil
}

// GetProfile fetches the authenticated user's own profile. The caller has
// already verified the token; this does not re-verify it.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (model.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The user may have been deleted after token issuance.
			return model.ProfileResponse{}, apperr.NotFound("user not found")
		}
		slog.Error("profile: user lookup failed", "user_id", userID, "error", err)
		return model.ProfileResponse{}, apperr.Internal("could not load profile", err)
	}

	return model.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}, nil
}

// checkThrottle rejects the login when the email has accumulated too many
// recent failures. A failing count read is logged and the login allowed:
// an outage in the throttle subsystem must not block all logins.
func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	since := time.Now().UTC().Add(-s.throttle.Window)

	count, err := s.attempts.CountRecentFailures(ctx, email, since)
	if err != nil {
		slog.Error("login: throttle check failed, allowing attempt", "email", email, "error", err)
		return nil
	}

	if count >= s.throttle.MaxAttempts {
		return apperr.RateLimited("too many failed login attempts, try again later")
	}

	return nil
}

// recordAttempt writes one audit row. Best effort: a failing insert is
// logged and does not change the login outcome.
func (s *AuthService) recordAttempt(ctx context.Context, email, clientIP, userID string, success bool) {
	attempt := &model.LoginAttempt{
		ID:        model.NewID(),
		Email:     email,
		IPAddress: clientIP,
		UserID:    userID,
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		slog.Error("login: recording attempt failed", "email", email, "error", err)
	}
}

func (s *AuthService) issueToken(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		if errors.Is(err, crypto.ErrSecretMissing) {
			slog.Error("token issuance failed: signing secret not configured")
			return "", apperr.ServerConfig("authentication is misconfigured", err)
		}
		slog.Error("token issuance failed", "user_id", userID, "error", err)
		return "", apperr.Internal("could not issue token", err)
	}
	return token, nil
}

func publicUser(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}
