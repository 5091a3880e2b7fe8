// Package auth is the identity gateway: account creation, credential
// verification and the session tokens the transport layer checks.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/domain"
	"github.com/dkeye/Courier/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
)

var validate = validator.New()

type credentials struct {
	Username string `validate:"required,min=3,max=32"`
	Password string `validate:"required,min=8,max=72"`
}

// AccountStore is the slice of the persistent store the gateway needs.
type AccountStore interface {
	CreateAccount(username, passwordHash string) (store.Account, error)
	Account(username string) (store.Account, error)
	SetStatus(username, status string) error
}

type Gateway struct {
	accounts AccountStore
	secret   []byte
	ttl      time.Duration
}

func NewGateway(accounts AccountStore, secret string, ttl time.Duration) *Gateway {
	return &Gateway{accounts: accounts, secret: []byte(secret), ttl: ttl}
}

// Register validates and creates an account, then issues the first
// session token. Hashing happens here so the store never sees a plain
// password.
func (g *Gateway) Register(username, password string) (domain.Identity, string, error) {
	if err := validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return domain.Identity{}, "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	acct, err := g.accounts.CreateAccount(username, hash)
	if errors.Is(err, store.ErrAccountExists) {
		return domain.Identity{}, "", ErrAccountExists
	}
	if err != nil {
		return domain.Identity{}, "", err
	}

	id := acct.Identity()
	token, err := GenerateToken(g.secret, id, g.ttl)
	if err != nil {
		return domain.Identity{}, "", err
	}
	log.Info().Str("module", "auth").Str("username", username).Msg("account created")
	return id, token, nil
}

// Login verifies credentials and issues a session token. Lookup and
// compare failures collapse into one error to avoid user enumeration.
func (g *Gateway) Login(username, password string) (domain.Identity, string, error) {
	acct, err := g.accounts.Account(username)
	if err != nil {
		return domain.Identity{}, "", ErrInvalidCredentials
	}

	match, err := ComparePassword(password, acct.PasswordHash)
	if err != nil || !match {
		return domain.Identity{}, "", ErrInvalidCredentials
	}

	id := acct.Identity()
	token, err := GenerateToken(g.secret, id, g.ttl)
	if err != nil {
		return domain.Identity{}, "", err
	}

	// Durable status flips to online already at login; the session
	// registry takes over once the websocket authenticates.
	if err := g.accounts.SetStatus(username, domain.StatusOnline); err != nil {
		log.Warn().Err(err).Str("module", "auth").Str("username", username).Msg("status write failed")
	}
	return id, token, nil
}

// Authenticate resolves a session token into a verified identity,
// re-reading the account so a stale avatar or rename never leaks into a
// new session.
func (g *Gateway) Authenticate(token string) (domain.Identity, error) {
	claims, err := ValidateToken(g.secret, token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	acct, err := g.accounts.Account(claims.Username)
	if err != nil {
		return domain.Identity{}, ErrInvalidCredentials
	}
	return acct.Identity(), nil
}
