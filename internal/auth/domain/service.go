package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateUserRequest struct {
	Username string
	Password string
	Role     Role
}

type LoginResult struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	User      User   `json:"user"`
}

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	Login(ctx context.Context, username, password string) (LoginResult, error)
	GetUser(ctx context.Context, id snowflake.ID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// VerifyToken parses and validates a bearer token, returning its claims.
	VerifyToken(token string) (*Claims, error)
}

var (
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
)
