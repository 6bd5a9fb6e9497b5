package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// Auth service errors.
var (
	ErrInvalidCredentials = domainerrors.Unauthenticated("Invalid credentials")
	ErrEmailInUse         = domainerrors.Conflict("Email already in use")
)

// TokenIssuer issues session tokens. auth.TokenCodec implements it.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	TTL() time.Duration
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,text,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginInput defines input for exchanging credentials for a token.
type LoginInput struct {
	Email    string `json:"email" validate:"required,text"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued token and the identity it binds.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService registers users, verifies credentials and issues tokens.
type AuthService struct {
	users     UserStore
	tokens    TokenIssuer
	validator *validation.Validator
	metrics   metrics.Recorder
	now       Clock

	// dummyHash is verified when the email is unknown so that both login
	// failure paths cost one argon2 derivation.
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer, v *validation.Validator, recorder metrics.Recorder) (*AuthService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if v == nil {
		v = validation.New()
	}

	dummy, err := auth.HashPassword(newID())
	if err != nil {
		return nil, fmt.Errorf("create dummy verifier: %w", err)
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		validator: v,
		metrics:   recorder,
		now:       systemClock,
		dummyHash: dummy,
	}, nil
}

// Register creates an account and returns a session for it.
// A duplicate email is a Conflict; the store's unique index decides races.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
			return nil, domainerrors.InvalidInputWithDetails("validation failed", map[string]string{"password": err.Error()})
		}
		return nil, domainerrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		ID:           newID(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailInUse
		}
		return nil, domainerrors.Internal(fmt.Errorf("create user: %w", err))
	}

	s.metrics.IncRegistration()
	return s.issue(user)
}

// Login verifies credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.Internal(fmt.Errorf("get user: %w", err))
		}
		auth.VerifyPassword(in.Password, s.dummyHash)
		return nil, s.loginFailed()
	}

	if !auth.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, s.loginFailed()
	}

	s.metrics.IncLogin(true)
	return s.issue(user)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity auth.Identity) (*model.User, error) {
	userID, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, domainerrors.Internal(fmt.Errorf("get user: %w", err))
	}
	return user, nil
}

func (s *AuthService) loginFailed() error {
	s.metrics.IncLogin(false)
	s.metrics.IncAuthFailure(metrics.ReasonInvalidCredentials)
	return ErrInvalidCredentials
}

func (s *AuthService) issue(user *model.User) (*Session, error) {
	issuedAt := s.now()
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, domainerrors.Internal(fmt.Errorf("issue token: %w", err))
	}
	return &Session{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.tokens.TTL()),
		User:      user,
	}, nil
}
