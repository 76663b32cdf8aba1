package filestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

func setupUsers(t *testing.T) *UserStore {
	t.Helper()
	s, err := NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestUser_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := setupUsers(t)

	u := models.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleUser,
	}
	if err := s.Create(ctx, &u); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("expected id assigned")
	}

	byEmail, err := s.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if byEmail.PasswordHash != "$2a$10$hash" {
		t.Fatal("password hash did not round-trip")
	}

	byID, err := s.GetByID(ctx, u.ID.Hex())
	if err != nil || byID.Email != u.Email {
		t.Fatalf("get by id failed: %v", err)
	}
}

func TestUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := setupUsers(t)

	first := models.User{Email: "dup@example.com", PasswordHash: "h", Role: models.RoleUser}
	if err := s.Create(ctx, &first); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := models.User{Email: "dup@example.com", PasswordHash: "h2", Role: models.RoleUser}
	if err := s.Create(ctx, &second); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}

	// Email comparison is exact and case-sensitive.
	upper := models.User{Email: "DUP@example.com", PasswordHash: "h3", Role: models.RoleUser}
	if err := s.Create(ctx, &upper); err != nil {
		t.Fatalf("differently-cased email must not conflict: %v", err)
	}
}

func TestUser_SetCart(t *testing.T) {
	ctx := context.Background()
	s := setupUsers(t)

	u := models.User{Email: "cart@example.com", PasswordHash: "h", Role: models.RoleUser}
	if err := s.Create(ctx, &u); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cartID := primitive.NewObjectID()
	if err := s.SetCart(ctx, u.ID.Hex(), cartID); err != nil {
		t.Fatalf("set cart failed: %v", err)
	}

	got, err := s.GetByID(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.CartID != cartID {
		t.Fatalf("cart = %s, want %s", got.CartID.Hex(), cartID.Hex())
	}

	if err := s.SetCart(ctx, primitive.NewObjectID().Hex(), cartID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for unknown user", err)
	}
}
