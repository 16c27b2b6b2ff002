package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
)

const (
	usersCollection = "users"

	indexEmail    = "users_email_unique"
	indexUsername = "users_username_unique"
)

type profileDocument struct {
	Username       string `bson:"username,omitempty"`
	Bio            string `bson:"bio"`
	ProfilePicture string `bson:"profilePicture,omitempty"`
	Location       string `bson:"location,omitempty"`
	Reputation     int    `bson:"reputation"`
}

type userDocument struct {
	ID                           primitive.ObjectID `bson:"_id,omitempty"`
	Name                         string             `bson:"name"`
	Email                        string             `bson:"email"`
	Password                     string             `bson:"password"`
	Gender                       string             `bson:"gender"`
	DOB                          time.Time          `bson:"dob"`
	Profile                      profileDocument    `bson:"profile"`
	IsEmailVerified              bool               `bson:"isEmailVerified"`
	EmailVerificationToken       string             `bson:"emailVerificationToken,omitempty"`
	EmailVerificationTokenExpiry *time.Time         `bson:"emailVerificationTokenExpiry,omitempty"`
	CreatedAt                    time.Time          `bson:"createdAt"`
	UpdatedAt                    time.Time          `bson:"updatedAt"`
}

// UserRepository stores users as documents in the "users" collection.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

// EnsureIndexes creates the unique indexes backing email and username uniqueness.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexEmail),
		},
		{
			Keys: bson.D{{Key: "profile.username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexUsername).
				SetPartialFilterExpression(bson.M{"profile.username": bson.M{"$type": "string"}}),
		},
	})
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"profile.username": username})
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	doc := fromEntity(u)
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mapWriteErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	u.ID = oid.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, upd entity.UserUpdate) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDocument(upd, r.now().UTC()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, mapWriteErr(err)
	}
	return toEntity(&doc), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&doc), nil
}

// updateDocument builds the $set/$unset document for a partial update.
func updateDocument(upd entity.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	if upd.Username != nil {
		if *upd.Username == "" {
			unset["profile.username"] = ""
		} else {
			set["profile.username"] = *upd.Username
		}
	}
	if upd.Bio != nil {
		set["profile.bio"] = *upd.Bio
	}
	if upd.Location != nil {
		set["profile.location"] = *upd.Location
	}
	if upd.ProfilePictureURL != nil {
		set["profile.profilePicture"] = *upd.ProfilePictureURL
	}
	if upd.IsEmailVerified != nil {
		set["isEmailVerified"] = *upd.IsEmailVerified
	}
	if upd.VerificationToken != nil {
		set["emailVerificationToken"] = *upd.VerificationToken
		set["emailVerificationTokenExpiry"] = upd.VerificationTokenExpiry
	} else if upd.ClearVerification {
		unset["emailVerificationToken"] = ""
		unset["emailVerificationTokenExpiry"] = ""
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), indexUsername) {
			return repository.ErrDuplicateUsername
		}
		return repository.ErrDuplicateEmail
	}
	return err
}

func fromEntity(u *entity.User) userDocument {
	doc := userDocument{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		Gender:   string(u.Gender),
		DOB:      u.DOB,
		Profile: profileDocument{
			Username:       u.Profile.Username,
			Bio:            u.Profile.Bio,
			ProfilePicture: u.Profile.ProfilePictureURL,
			Location:       u.Profile.Location,
			Reputation:     u.Profile.Reputation,
		},
		IsEmailVerified:              u.IsEmailVerified,
		EmailVerificationToken:       u.EmailVerificationToken,
		EmailVerificationTokenExpiry: u.EmailVerificationTokenExpiry,
		CreatedAt:                    u.CreatedAt,
		UpdatedAt:                    u.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func toEntity(d *userDocument) *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Gender:       entity.Gender(d.Gender),
		DOB:          d.DOB,
		Profile: entity.Profile{
			Username:          d.Profile.Username,
			Bio:               d.Profile.Bio,
			ProfilePictureURL: d.Profile.ProfilePicture,
			Location:          d.Profile.Location,
			Reputation:        d.Profile.Reputation,
		},
		IsEmailVerified:              d.IsEmailVerified,
		EmailVerificationToken:       d.EmailVerificationToken,
		EmailVerificationTokenExpiry: d.EmailVerificationTokenExpiry,
		CreatedAt:                    d.CreatedAt,
		UpdatedAt:                    d.UpdatedAt,
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
