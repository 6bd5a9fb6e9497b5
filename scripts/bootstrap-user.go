// Command bootstrap-user creates an account (or signs in to an existing
// one) and prints a session token, for smoke-testing a deployment.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/service"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Created   bool      `json:"created"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		tokenSecret = flag.String("token-secret", os.Getenv("TOKEN_SECRET"), "Hex-encoded 32-byte token key")
		email       = flag.String("email", "admin@secondbrain.local", "Account email")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Account password")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		migrate     = flag.Bool("migrate", true, "Apply embedded migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" || *tokenSecret == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL, TOKEN_SECRET and a password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if _, err := repository.Migrate(ctx, *databaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "apply migrations:", err)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, *databaseURL, repository.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	codec, err := auth.NewTokenCodec(*tokenSecret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token codec:", err)
		os.Exit(1)
	}

	svc, err := service.NewAuthService(repo.Users, codec, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "auth service:", err)
		os.Exit(1)
	}

	session, created, err := ensureSession(ctx, svc, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{
		UserID:    session.User.ID,
		Email:     session.User.Email,
		Created:   created,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureSession registers email, falling back to login when the account
// already exists. A wrong password for an existing account is an error.
func ensureSession(ctx context.Context, svc *service.AuthService, email, password string) (*service.Session, bool, error) {
	session, err := svc.Register(ctx, service.RegisterInput{Email: email, Password: password})
	if err == nil {
		return session, true, nil
	}
	if !errors.Is(err, domainerrors.ErrConflict) {
		return nil, false, fmt.Errorf("register: %w", err)
	}

	session, err = svc.Login(ctx, service.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, false, fmt.Errorf("email %s already registered with a different password: %w", email, err)
	}
	return session, false, nil
}
