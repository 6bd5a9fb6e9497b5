package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// Gate rejection reasons. All of them surface to clients as the same 401.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrUnknownIdentity     = errors.New("identity no longer exists")
)

// UserLookup confirms that an identity still exists.
type UserLookup interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// TokenVerifier verifies a session token and returns the user id it binds.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Gate turns an Authorization header into a verified Identity.
type Gate struct {
	tokens TokenVerifier
	users  UserLookup
}

// NewGate creates a Gate.
func NewGate(tokens TokenVerifier, users UserLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate verifies the header value and confirms the identity exists.
// It performs exactly one storage lookup when the token verifies.
func (g *Gate) Authenticate(ctx context.Context, header string) (Identity, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return Identity{}, err
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}

	exists, err := g.users.UserExists(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("lookup identity: %w", err)
	}
	if !exists {
		return Identity{}, ErrUnknownIdentity
	}

	return Identity{userID: userID}, nil
}

// IsRejection reports whether err is an expected authentication failure
// rather than a storage error.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrMalformedCredential) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUnknownIdentity)
}

// ParseBearer extracts the token from a "Bearer <token>" header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != BearerScheme {
		return "", ErrMalformedCredential
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedCredential
	}

	return token, nil
}
