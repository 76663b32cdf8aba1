package auth

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/store/filestore"
)

func setupService(t *testing.T) (*Service, *store.Stores) {
	t.Helper()
	stores, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create stores: %v", err)
	}
	svc := NewService(stores.Users, stores.Carts, Config{
		Secret:      "test-secret",
		AdminDomain: "admin.com",
	})
	return svc, stores
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, stores := setupService(t)

	user, err := svc.Register(ctx, RegisterInput{
		Email: "jane@example.com", Password: "hunter2",
		FirstName: "Jane", LastName: "Doe",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role = %s, want user", user.Role)
	}
	if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if user.CartID.IsZero() {
		t.Fatal("register must provision a cart")
	}
	if _, err := stores.Carts.GetByID(ctx, user.CartID.Hex()); err != nil {
		t.Fatalf("provisioned cart not found: %v", err)
	}
}

func TestRegister_AdminDomain(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, err := svc.Register(ctx, RegisterInput{
		Email: "root@admin.com", Password: "hunter2",
		FirstName: "Root", LastName: "Admin",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want admin for the configured domain", user.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, stores := setupService(t)

	in := RegisterInput{Email: "dup@example.com", Password: "hunter2", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
	// No second user appeared.
	if _, err := stores.Users.GetByEmail(ctx, "dup@example.com"); err != nil {
		t.Fatalf("original user lost: %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	if _, err := svc.Register(ctx, RegisterInput{
		Email: "jane@example.com", Password: "hunter2", FirstName: "Jane", LastName: "Doe",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(ctx, "jane@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user.Email != "jane@example.com" {
		t.Fatalf("unexpected login result: %q %+v", token, user)
	}

	resolved, err := svc.CurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatal("token resolved to a different user")
	}
}

// Wrong password and unknown email must be indistinguishable to the caller.
func TestLogin_NoUserEnumeration(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	if _, err := svc.Register(ctx, RegisterInput{
		Email: "jane@example.com", Password: "hunter2", FirstName: "Jane", LastName: "Doe",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, wrongPassword := svc.Login(ctx, "jane@example.com", "not-it")
	_, _, unknownEmail := svc.Login(ctx, "nobody@example.com", "hunter2")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", unknownEmail)
	}
}

func TestCurrentUser_Garbage(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	if _, err := svc.CurrentUser(ctx, "not-a-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}
