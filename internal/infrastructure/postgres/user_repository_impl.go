package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
)

const (
	uniqueViolation = "23505"

	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"

	userColumns = `id::text, name, email, password_hash, gender, dob, username, bio, profile_picture_url,
		location, reputation, is_email_verified, email_verification_token, email_verification_token_expiry,
		created_at, updated_at`
)

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, gender, dob, username, bio, profile_picture_url,
			location, reputation, is_email_verified, email_verification_token, email_verification_token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id::text, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash, string(u.Gender), u.DOB, nullText(u.Profile.Username),
		u.Profile.Bio, u.Profile.ProfilePictureURL, u.Profile.Location, u.Profile.Reputation,
		u.IsEmailVerified, nullText(u.EmailVerificationToken), u.EmailVerificationTokenExpiry)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, upd entity.UserUpdate) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	query, args := buildUpdate(id, upd)
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapWriteErr(err)
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// buildUpdate renders an UPDATE touching only the columns set in upd.
func buildUpdate(id string, upd entity.UserUpdate) (string, []any) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Username != nil {
		set("username", nullText(*upd.Username))
	}
	if upd.Bio != nil {
		set("bio", *upd.Bio)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.ProfilePictureURL != nil {
		set("profile_picture_url", *upd.ProfilePictureURL)
	}
	if upd.IsEmailVerified != nil {
		set("is_email_verified", *upd.IsEmailVerified)
	}
	if upd.VerificationToken != nil {
		set("email_verification_token", nullText(*upd.VerificationToken))
		set("email_verification_token_expiry", upd.VerificationTokenExpiry)
	} else if upd.ClearVerification {
		sets = append(sets, "email_verification_token = NULL", "email_verification_token_expiry = NULL")
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns)
	return query, args
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u        entity.User
		gender   string
		username pgtype.Text
		token    pgtype.Text
		expiry   pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &gender, &u.DOB, &username,
		&u.Profile.Bio, &u.Profile.ProfilePictureURL, &u.Profile.Location, &u.Profile.Reputation,
		&u.IsEmailVerified, &token, &expiry, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Gender = entity.Gender(gender)
	u.Profile.Username = username.String
	u.EmailVerificationToken = token.String
	if expiry.Valid {
		t := expiry.Time
		u.EmailVerificationTokenExpiry = &t
	}
	return &u, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintEmail:
			return repository.ErrDuplicateEmail
		case constraintUsername:
			return repository.ErrDuplicateUsername
		}
	}
	return err
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

var _ repository.UserRepository = (*UserRepository)(nil)
