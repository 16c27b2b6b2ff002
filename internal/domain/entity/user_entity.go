package entity

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Profile is the user-editable part of an account.
// Username, when set, is unique across all users.
type Profile struct {
	Username          string
	Bio               string
	ProfilePictureURL string
	Location          string
	Reputation        int
}

// User is the aggregate root for the account domain
// PasswordHash holds a bcrypt hash and must never leave the service boundary.
//
// EmailVerificationToken and EmailVerificationTokenExpiry are set only while a
// verification is outstanding.
type User struct {
	ID                           string
	Name                         string
	Email                        string
	PasswordHash                 string
	Gender                       Gender
	DOB                          time.Time
	Profile                      Profile
	IsEmailVerified              bool
	EmailVerificationToken       string
	EmailVerificationTokenExpiry *time.Time
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Username          *string
	Bio               *string
	Location          *string
	ProfilePictureURL *string

	IsEmailVerified *bool

	// VerificationToken replaces the outstanding token and expiry.
	VerificationToken       *string
	VerificationTokenExpiry *time.Time
	// ClearVerification removes the outstanding token and expiry.
	ClearVerification bool
}
