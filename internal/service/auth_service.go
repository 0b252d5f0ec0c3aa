package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/middleware"
	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues JWT access tokens and redis-backed refresh tokens.
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      config.JWTConfig
}

// NewAuthService creates the auth service. rdb may be nil; refresh tokens
// are then disabled and only access tokens are issued.
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg config.JWTConfig) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb, cfg: cfg}
}

// LoginRequest carries the credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is the token pair handed to the client.
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *entity.User `json:"user"`
}

// Login verifies the credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, fmt.Errorf("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Refresh trades a valid refresh token for a fresh token pair. The old
// refresh token is invalidated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("refresh tokens are not enabled")
	}

	userID, err := s.rdb.Get(ctx, refreshKey(refreshToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	s.rdb.Del(ctx, refreshKey(refreshToken))

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, fmt.Errorf("account is disabled")
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates a refresh token; access tokens simply expire.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.rdb == nil || refreshToken == "" {
		return nil
	}
	return s.rdb.Del(ctx, refreshKey(refreshToken)).Err()
}

// Me returns the account behind a user id.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// RegisterRequest carries a new account; only admins may call this.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Register creates an employee account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already in use")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	role := req.Role
	switch role {
	case "":
		role = entity.RoleViewer
	case entity.RoleAdmin, entity.RoleSales, entity.RoleYard, entity.RoleViewer:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*LoginResult, error) {
	now := time.Now()
	claims := &middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpire)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	result := &LoginResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.AccessTokenExpire.Seconds()),
		User:        user,
	}

	if s.rdb != nil {
		refreshToken := uuid.New().String()
		if err := s.rdb.Set(ctx, refreshKey(refreshToken), user.ID, s.cfg.RefreshTokenExpire).Err(); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
		result.RefreshToken = refreshToken
	}

	return result, nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}
