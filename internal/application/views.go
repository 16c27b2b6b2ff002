package application

import (
	"time"

	"github.com/oksasatya/account-service/internal/domain/entity"
)

// ProfileView is the profile block shared by private and public views.
type ProfileView struct {
	Username          string `json:"username,omitempty"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Location          string `json:"location"`
	Reputation        int    `json:"reputation"`
}

// PrivateUser is what the account owner sees. It never carries the password
// hash or the verification token.
type PrivateUser struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Gender          string      `json:"gender"`
	DOB             string      `json:"dob"`
	Profile         ProfileView `json:"profile"`
	IsEmailVerified bool        `json:"is_email_verified"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// PublicProfile is what anyone may see about a user.
type PublicProfile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Gender    string      `json:"gender"`
	Profile   ProfileView `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
}

func profileView(p entity.Profile) ProfileView {
	return ProfileView{
		Username:          p.Username,
		Bio:               p.Bio,
		ProfilePictureURL: p.ProfilePictureURL,
		Location:          p.Location,
		Reputation:        p.Reputation,
	}
}

func NewPrivateUser(u *entity.User) PrivateUser {
	return PrivateUser{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Gender:          string(u.Gender),
		DOB:             u.DOB.Format(dateLayout),
		Profile:         profileView(u.Profile),
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func NewPublicProfile(u *entity.User) PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Gender:    string(u.Gender),
		Profile:   profileView(u.Profile),
		CreatedAt: u.CreatedAt,
	}
}
