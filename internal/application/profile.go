package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/entity"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/validation"
)

// PictureUpload is an uploaded profile picture waiting to be stored.
type PictureUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UpdateProfileInput carries only the fields the caller supplied.
// An empty username counts as not supplied; empty bio and location are
// explicit values.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
	Location *string
	Picture  *PictureUpload
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*PrivateUser, error) {
	current, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	upd := entity.UserUpdate{Bio: in.Bio, Location: in.Location}

	if in.Username != nil {
		if name := strings.TrimSpace(*in.Username); name != "" {
			if !validation.ValidUsername(name) {
				return nil, ErrInvalidUsername
			}
			owner, err := s.Repo.FindByUsername(ctx, name)
			switch {
			case err == nil && owner.ID != userID:
				return nil, ErrUsernameTaken
			case err != nil && !errors.Is(err, repo.ErrNotFound):
				return nil, fmt.Errorf("find user by username: %w", err)
			}
			upd.Username = &name
		}
	}

	if in.Picture != nil {
		url, err := s.uploadPicture(ctx, userID, in.Picture)
		if err != nil {
			return nil, err
		}
		upd.ProfilePictureURL = &url
	}

	// A failed write below leaves the uploaded object unreferenced in the bucket.
	u, err := s.Repo.UpdateFields(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.invalidateProfiles(ctx, current.Profile.Username, u.Profile.Username)
	s.publish(ctx, EventProfileUpdated, u.ID)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Profile.Username}).Info("profile updated")

	view := NewPrivateUser(u)
	return &view, nil
}

func (s *Service) uploadPicture(ctx context.Context, userID string, p *PictureUpload) (string, error) {
	if err := helpers.ValidateImage(p.ContentType, p.Size, s.Settings.MaxUploadBytes); err != nil {
		return "", ErrInvalidUpload
	}
	if s.Uploader == nil {
		s.Logger.WithField("user_id", userID).Error("profile picture upload requested but no uploader configured")
		return "", ErrUploadFailed
	}
	url, err := s.Uploader.UploadProfilePicture(ctx, userID, p.Filename, p.ContentType, p.Size, p.Body)
	if err != nil {
		if errors.Is(err, helpers.ErrInvalidUpload) {
			return "", ErrInvalidUpload
		}
		s.Logger.WithError(err).WithField("user_id", userID).Error("profile picture upload failed")
		return "", ErrUploadFailed
	}
	return url, nil
}

func (s *Service) GetOwnProfile(ctx context.Context, userID string) (*PrivateUser, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	view := NewPrivateUser(u)
	return &view, nil
}

// GetPublicProfile reads through the Redis cache when one is configured.
func (s *Service) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}
	if p, ok := s.cachedPublicProfile(ctx, username); ok {
		return p, nil
	}

	u, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	view := NewPublicProfile(u)
	s.cachePublicProfile(ctx, view)
	return &view, nil
}

// CheckUsernameAvailability reports whether no user holds username.
func (s *Service) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if !validation.ValidUsername(username) {
		return false, ErrInvalidUsername
	}
	_, err := s.Repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, repo.ErrNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("find user by username: %w", err)
	}
}
