package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/account-service/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// UserRepository is the credential store contract.
//
// Implementations must enforce uniqueness of email and of a set username at
// write time and report violations as ErrDuplicateEmail/ErrDuplicateUsername.
// Lookups that match nothing return ErrNotFound.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Insert assigns ID, CreatedAt and UpdatedAt on u.
	Insert(ctx context.Context, u *entity.User) error
	// UpdateFields applies upd, refreshes updated_at and returns the stored record.
	UpdateFields(ctx context.Context, id string, upd entity.UserUpdate) (*entity.User, error)
}
