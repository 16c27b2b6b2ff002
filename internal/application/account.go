package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/entity"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
	tpl "github.com/oksasatya/account-service/pkg/mailer/templates"
)

const (
	MsgRegistered       = "User registered successfully. Please check your email to verify your account."
	MsgEmailVerified    = "Email verified successfully"
	MsgVerificationSent = "Verification email sent successfully"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,basicemail"`
	Password string `json:"password" validate:"required,pwd"`
	Gender   string `json:"gender" validate:"required,gender"`
	DOB      string `json:"dob" validate:"required"`
}

type RegisterResult struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      PrivateUser `json:"user"`
}

type resendInput struct {
	Email string `json:"email" validate:"required,basicemail"`
}

// Register creates an unverified account. The verification email is sent
// before the user is stored; if sending fails nothing is persisted.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	dob, err := parseDOB(in.DOB)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"dob": "must be a date in YYYY-MM-DD format"}}
	}

	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	token, exp, err := s.JWT.IssueVerificationToken(in.Email)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	if err := s.sendVerification(ctx, in.Name, in.Email, token, exp); err != nil {
		return nil, err
	}

	u := &entity.User{
		Name:                         in.Name,
		Email:                        in.Email,
		PasswordHash:                 hash,
		Gender:                       entity.Gender(in.Gender),
		DOB:                          dob,
		EmailVerificationToken:       token,
		EmailVerificationTokenExpiry: &exp,
	}
	if err := s.Repo.Insert(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return &RegisterResult{UserID: u.ID, Message: MsgRegistered}, nil
}

// VerifyEmail consumes a verification token. The token must be the one
// currently stored for the user, so a consumed or superseded token fails.
func (s *Service) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrVerificationInvalid
	}
	claims, err := s.JWT.Verify(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return "", ErrVerificationExpired
		}
		return "", ErrVerificationInvalid
	}
	if claims.Purpose != helpers.PurposeVerification || claims.Email == "" {
		return "", ErrVerificationInvalid
	}

	u, err := s.Repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}
	if u.EmailVerificationToken != token {
		return "", ErrVerificationInvalid
	}
	if exp := u.EmailVerificationTokenExpiry; exp != nil && s.now().After(*exp) {
		return "", ErrVerificationExpired
	}

	verified := true
	u, err = s.Repo.UpdateFields(ctx, u.ID, entity.UserUpdate{IsEmailVerified: &verified, ClearVerification: true})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("mark email verified: %w", err)
	}

	s.invalidateProfiles(ctx, u.Profile.Username)
	s.publish(ctx, EventUserVerified, u.ID)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("email verified")
	return MsgEmailVerified, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable; an unverified account is reported
// as such.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !u.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.IssueSessionToken(u.ID, u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.Logger.WithField("user_id", u.ID).Info("user logged in")
	return &LoginResult{Token: token, ExpiresAt: exp, User: NewPrivateUser(u)}, nil
}

// ResendVerification replaces the outstanding token and mails a new link.
// The new token is stored before the email is sent.
func (s *Service) ResendVerification(ctx context.Context, email string) (string, error) {
	in := resendInput{Email: strings.TrimSpace(email)}
	if err := s.validateStruct(in); err != nil {
		return "", err
	}

	u, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}
	if u.IsEmailVerified {
		return "", ErrAlreadyVerified
	}

	token, exp, err := s.JWT.IssueVerificationToken(u.Email)
	if err != nil {
		return "", fmt.Errorf("issue verification token: %w", err)
	}
	if _, err := s.Repo.UpdateFields(ctx, u.ID, entity.UserUpdate{VerificationToken: &token, VerificationTokenExpiry: &exp}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("store verification token: %w", err)
	}

	if err := s.sendVerification(ctx, u.Name, u.Email, token, exp); err != nil {
		return "", err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("verification email resent")
	return MsgVerificationSent, nil
}

func (s *Service) sendVerification(ctx context.Context, name, email, token string, exp time.Time) error {
	link := tpl.VerificationLink(s.Settings.VerifyEmailURL, token)
	data := tpl.NewVerifyEmailData(s.Settings.Branding, name, email, link,
		tpl.WithExpiresAt(exp),
		tpl.WithExpiresIn(humanizeTTL(s.JWT.VerificationTTL)),
	)
	subject, text, html, err := tpl.Render(tpl.VerifyEmail, data)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	if err := s.Mailer.Send(ctx, email, subject, text, html); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("send verification email failed")
		return ErrNotificationFailure
	}
	return nil
}

// parseDOB accepts a calendar date or an RFC 3339 timestamp.
func parseDOB(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func humanizeTTL(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d > 0 && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return d.String()
	}
}
