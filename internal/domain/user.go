package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name string, isAdmin bool, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		IsAdmin:   isAdmin,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Principal returns the identity the user acts as.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, IsAdmin: u.IsAdmin}
}

// Principal is the authenticated caller of an operation, supplied by the identity provider.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(user *User, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the principal it was issued to.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// AuthService defines sign-up, login and account operations.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	DeleteAccount(ctx context.Context, actor Principal, id string) error
}
