package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/middleware"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewAuthService(repos.User, nil, config.JWTConfig{
		Secret:            "test-secret",
		AccessTokenExpire: time.Hour,
		Issuer:            "werf-test",
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Name:     "Piet",
		Email:    "piet@test.local",
		Password: "correct-horse",
		Role:     "sales",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	result, err := svc.Login(ctx, &LoginRequest{Email: "piet@test.local", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("no access token issued")
	}
	if result.User.LastLoginAt == nil {
		t.Error("last login not stamped")
	}

	// The token carries the identity claims the middleware reads.
	token, err := jwt.ParseWithClaims(result.AccessToken, &middleware.JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims := token.Claims.(*middleware.JWTClaims)
	if claims.UserID != user.ID || claims.Role != "sales" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{
		Name: "Piet", Email: "piet@test.local", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, &LoginRequest{Email: "piet@test.local", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}

	// Unknown accounts produce the same error as wrong passwords.
	_, err = svc.Login(ctx, &LoginRequest{Email: "ghost@test.local", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	req := &RegisterRequest{Name: "Piet", Email: "piet@test.local", Password: "correct-horse"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, req); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	svc := setupAuth(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Piet", Email: "piet@test.local", Password: "correct-horse", Role: "pirate",
	})
	if err == nil {
		t.Error("unknown role should fail")
	}
}
