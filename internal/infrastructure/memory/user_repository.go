package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
)

// UserRepository keeps users in process memory. Uniqueness checks and writes
// happen under one lock, so it behaves like a store with unique constraints.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), now: time.Now}
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u := r.byUsername(username); u != nil {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Insert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if u.Profile.Username != "" && r.byUsername(u.Profile.Username) != nil {
		return repository.ErrDuplicateUsername
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) UpdateFields(_ context.Context, id string, upd entity.UserUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Username != nil && *upd.Username != "" {
		if other := r.byUsername(*upd.Username); other != nil && other.ID != id {
			return nil, repository.ErrDuplicateUsername
		}
	}
	u := clone(cur)
	apply(u, upd)
	u.UpdatedAt = r.now().UTC()
	r.users[id] = u
	return clone(u), nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) byUsername(username string) *entity.User {
	if username == "" {
		return nil
	}
	for _, u := range r.users {
		if u.Profile.Username == username {
			return u
		}
	}
	return nil
}

// apply copies the non-nil fields of upd onto u.
func apply(u *entity.User, upd entity.UserUpdate) {
	if upd.Username != nil {
		u.Profile.Username = *upd.Username
	}
	if upd.Bio != nil {
		u.Profile.Bio = *upd.Bio
	}
	if upd.Location != nil {
		u.Profile.Location = *upd.Location
	}
	if upd.ProfilePictureURL != nil {
		u.Profile.ProfilePictureURL = *upd.ProfilePictureURL
	}
	if upd.IsEmailVerified != nil {
		u.IsEmailVerified = *upd.IsEmailVerified
	}
	if upd.ClearVerification {
		u.EmailVerificationToken = ""
		u.EmailVerificationTokenExpiry = nil
	}
	if upd.VerificationToken != nil {
		u.EmailVerificationToken = *upd.VerificationToken
		u.EmailVerificationTokenExpiry = upd.VerificationTokenExpiry
	}
}

func clone(u *entity.User) *entity.User {
	c := *u
	if u.EmailVerificationTokenExpiry != nil {
		t := *u.EmailVerificationTokenExpiry
		c.EmailVerificationTokenExpiry = &t
	}
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
