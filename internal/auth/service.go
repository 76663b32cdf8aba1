// Package auth covers registration, login, credential tokens and role
// resolution. Passwords are stored as bcrypt hashes, never plaintext.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password, so
// a caller cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when a presented credential token does not
// resolve to a user.
var ErrUnauthenticated = errors.New("unauthenticated")

type Config struct {
	Secret string
	// TokenTTL bounds how long an issued credential stays valid.
	TokenTTL time.Duration
	// AdminDomain grants the admin role to registrations whose email domain
	// matches it exactly.
	AdminDomain string
}

type Service struct {
	users store.UserStore
	carts store.CartStore
	cfg   Config
}

func NewService(users store.UserStore, carts store.CartStore, cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{users: users, carts: carts, cfg: cfg}
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=4"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// Register creates a user and provisions an empty cart linked to it. A
// duplicate email yields store.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         s.roleFor(in.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	cart, err := s.carts.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to provision cart: %w", err)
	}
	if err := s.users.SetCart(ctx, user.ID.Hex(), cart.ID); err != nil {
		return nil, fmt.Errorf("failed to link cart: %w", err)
	}
	user.CartID = cart.ID

	log.Printf("Registered user %s (role %s)", user.Email, user.Role)
	return user, nil
}

// Login verifies the credentials and issues a signed token. Unknown email and
// wrong password produce the same outcome.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := CreateToken(user, s.cfg.Secret, s.cfg.TokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser resolves a credential token to the user it was issued for.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := ParseToken(token, s.cfg.Secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// TokenTTL is exposed so the transport layer can align cookie expiry.
func (s *Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

func (s *Service) roleFor(email string) models.Role {
	at := strings.LastIndex(email, "@")
	if s.cfg.AdminDomain != "" && at >= 0 && strings.EqualFold(email[at+1:], s.cfg.AdminDomain) {
		return models.RoleAdmin
	}
	return models.RoleUser
}
