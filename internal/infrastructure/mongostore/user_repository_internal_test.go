package mongostore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
)

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	empty := ""
	name := "alice"

	t.Run("partial profile update", func(t *testing.T) {
		doc := updateDocument(entity.UserUpdate{Username: &name, Bio: &empty}, now)

		set, ok := doc["$set"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, "alice", set["profile.username"])
		assert.Equal(t, "", set["profile.bio"])
		assert.Equal(t, now, set["updatedAt"])
		assert.NotContains(t, set, "profile.location")
		assert.NotContains(t, doc, "$unset")
	})

	t.Run("verification cleared", func(t *testing.T) {
		verified := true
		doc := updateDocument(entity.UserUpdate{IsEmailVerified: &verified, ClearVerification: true}, now)

		set := doc["$set"].(bson.M)
		unset := doc["$unset"].(bson.M)
		assert.Equal(t, true, set["isEmailVerified"])
		assert.Contains(t, unset, "emailVerificationToken")
		assert.Contains(t, unset, "emailVerificationTokenExpiry")
	})

	t.Run("new verification token wins over clear", func(t *testing.T) {
		tok := "tok"
		exp := now.Add(time.Hour)
		doc := updateDocument(entity.UserUpdate{VerificationToken: &tok, VerificationTokenExpiry: &exp, ClearVerification: true}, now)

		set := doc["$set"].(bson.M)
		assert.Equal(t, "tok", set["emailVerificationToken"])
		assert.NotContains(t, doc, "$unset")
	})
}

func TestDocumentConversion(t *testing.T) {
	exp := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	u := &entity.User{
		ID:                           "65a1b2c3d4e5f60718293a4b",
		Name:                         "Alice",
		Email:                        "alice@x.com",
		PasswordHash:                 "hash",
		Gender:                       entity.GenderOther,
		Profile:                      entity.Profile{Username: "alice", ProfilePictureURL: "https://cdn/p.png", Reputation: 2},
		EmailVerificationToken:       "tok",
		EmailVerificationTokenExpiry: &exp,
	}

	doc := fromEntity(u)
	assert.Equal(t, "hash", doc.Password)
	assert.Equal(t, "https://cdn/p.png", doc.Profile.ProfilePicture)

	back := toEntity(&doc)
	assert.Equal(t, u, back)
}

func TestMapWriteErr(t *testing.T) {
	dupUsername := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: accounts.users index: users_username_unique dup key",
	}}}
	dupEmail := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: accounts.users index: users_email_unique dup key",
	}}}
	other := errors.New("boom")

	assert.ErrorIs(t, mapWriteErr(dupUsername), repository.ErrDuplicateUsername)
	assert.ErrorIs(t, mapWriteErr(dupEmail), repository.ErrDuplicateEmail)
	assert.ErrorIs(t, mapWriteErr(other), other)
}
