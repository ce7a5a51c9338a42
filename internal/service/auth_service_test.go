package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/takumi/banter/internal/repository/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepo()
	svc := NewAuthService(users, "test-secret")

	resp, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Name:     "alice",
		Password: "Sup3rSecret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.PasswordHash == "Sup3rSecret" {
		t.Fatal("password must be stored hashed")
	}
	if resp.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	// Token subject carries the user id
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parsing token: %v", err)
	}
	sub, _ := token.Claims.GetSubject()
	if sub != resp.User.ID.String() {
		t.Errorf("token sub = %q, want %q", sub, resp.User.ID)
	}

	// Duplicate email
	if _, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Name: "other", Password: "Sup3rSecret"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register err = %v, want ErrEmailTaken", err)
	}

	// Login happy path and both failure modes
	if _, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Sup3rSecret"}); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("bad password err = %v, want ErrInvalidCreds", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Sup3rSecret"}); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("unknown email err = %v, want ErrInvalidCreds", err)
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepo()
	svc := NewAuthService(users, "test-secret")

	first, err := svc.EnsureUser(ctx, "oidc:abc123", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	again, err := svc.EnsureUser(ctx, "oidc:abc123", "renamed", "other@example.com")
	if err != nil {
		t.Fatalf("EnsureUser (second call): %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second call created a new user: %s != %s", again.ID, first.ID)
	}
	if again.Name != "alice" {
		t.Errorf("existing profile must win, got name %q", again.Name)
	}
}
