package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Principal is the acting identity attached to a request after
// authentication. RoleName backs the role-designated approval check.
type Principal struct {
	UserID   snowflake.ID
	Name     string
	Email    string
	RoleName string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	// Authenticate resolves the principal behind a bearer token against the
	// request's tenant store.
	Authenticate(ctx context.Context, token string) (Principal, error)
}

type Repository interface {
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	InsertRole(ctx context.Context, db *gorm.DB, role *Role) error
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrInvalidToken       = errors.New("invalid_token")
)
