package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

func TestRegister_Success(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	ctx := context.Background()

	f.notifier.On("Send", mock.Anything, "alice@x.com", "Verify your email - New Novel",
		mock.MatchedBy(func(text string) bool { return strings.Contains(text, verifyURL+"?token=") }),
		mock.MatchedBy(func(html string) bool { return strings.Contains(html, "Verify Email") }),
	).Return(nil).Once()

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)
	assert.Equal(t, application.MsgRegistered, res.Message)
	f.notifier.AssertExpectations(t)

	u, err := f.repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, res.UserID, u.ID)
	assert.False(t, u.IsEmailVerified)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "secret1"))
	require.NotNil(t, u.EmailVerificationTokenExpiry)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *u.EmailVerificationTokenExpiry, time.Minute)

	claims, err := f.jwt.Verify(u.EmailVerificationToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, helpers.PurposeVerification, claims.Purpose)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), aliceInput())
	assert.ErrorIs(t, err, application.ErrDuplicateEmail)
	assert.Equal(t, 1, f.repo.Len())
	f.notifier.AssertNumberOfCalls(t, "Send", 1)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*application.RegisterInput)
		field string
	}{
		{"missing name", func(in *application.RegisterInput) { in.Name = "  " }, "name"},
		{"bad email", func(in *application.RegisterInput) { in.Email = "alice@x" }, "email"},
		{"short password", func(in *application.RegisterInput) { in.Password = "12345" }, "password"},
		{"unknown gender", func(in *application.RegisterInput) { in.Gender = "robot" }, "gender"},
		{"missing dob", func(in *application.RegisterInput) { in.DOB = "" }, "dob"},
		{"malformed dob", func(in *application.RegisterInput) { in.DOB = "01/04/1990" }, "dob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 24*time.Hour)
			in := aliceInput()
			tt.mut(&in)

			_, err := f.svc.Register(context.Background(), in)
			require.ErrorIs(t, err, application.ErrValidation)

			var verr *application.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
			f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 0, f.repo.Len())
		})
	}
}

func TestRegister_AcceptsRFC3339DOB(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	in := aliceInput()
	in.DOB = "1990-04-01T15:30:00Z"
	_, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)

	u, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), u.DOB)
}

func TestRegister_DispatchFailureStoresNothing(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	_, err := f.svc.Register(context.Background(), aliceInput())
	assert.ErrorIs(t, err, application.ErrNotificationFailure)

	_, err = f.repo.FindByEmail(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, f.repo.Len())
}

func TestLogin_RequiresVerification(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := f.svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), application.LoginInput{Email: "alice@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, application.ErrEmailNotVerified)
}

func TestVerifyThenLogin(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	ctx := context.Background()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	stored, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)
	token := stored.EmailVerificationToken

	msg, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, application.MsgEmailVerified, msg)

	verified, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)
	assert.Empty(t, verified.EmailVerificationToken)
	assert.Nil(t, verified.EmailVerificationTokenExpiry)

	_, err = f.svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, application.ErrVerificationInvalid)

	_, err = f.svc.Login(ctx, application.LoginInput{Email: "alice@x.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, application.LoginInput{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	login, err := f.svc.Login(ctx, application.LoginInput{Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.UserID, login.User.ID)
	assert.True(t, login.User.IsEmailVerified)
	assert.Equal(t, "1990-04-01", login.User.DOB)

	claims, err := f.jwt.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, helpers.PurposeSession, claims.Purpose)
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t, 24*time.Hour)

	_, err := f.svc.Login(context.Background(), application.LoginInput{Email: "alice@x.com"})
	assert.ErrorIs(t, err, application.ErrValidation)
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newFixture(t, -time.Minute)
	ctx := context.Background()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	stored, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)

	_, err = f.svc.VerifyEmail(ctx, stored.EmailVerificationToken)
	assert.ErrorIs(t, err, application.ErrVerificationExpired)

	after, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.False(t, after.IsEmailVerified)
}

func TestVerifyEmail_RejectsForeignTokens(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	ctx := context.Background()
	u := seedUser(t, f, "bob@x.com", "bob")

	session, _, err := f.jwt.IssueSessionToken(u.ID, u.Email)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", session} {
		_, err := f.svc.VerifyEmail(ctx, tok)
		assert.ErrorIs(t, err, application.ErrVerificationInvalid)
	}

	orphan, _, err := f.jwt.IssueVerificationToken("ghost@x.com")
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, orphan)
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	ctx := context.Background()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	seedUser(t, f, "bob@x.com", "bob")

	_, err := f.svc.ResendVerification(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, application.ErrUserNotFound)

	_, err = f.svc.ResendVerification(ctx, "bob@x.com")
	assert.ErrorIs(t, err, application.ErrAlreadyVerified)

	_, err = f.svc.ResendVerification(ctx, "not-an-email")
	assert.ErrorIs(t, err, application.ErrValidation)

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	before, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)

	msg, err := f.svc.ResendVerification(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, application.MsgVerificationSent, msg)

	after, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, before.EmailVerificationToken, after.EmailVerificationToken)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	_, err = f.svc.VerifyEmail(ctx, before.EmailVerificationToken)
	assert.ErrorIs(t, err, application.ErrVerificationInvalid)
	_, err = f.svc.VerifyEmail(ctx, after.EmailVerificationToken)
	assert.NoError(t, err)
}

func TestResendVerification_PersistsBeforeSend(t *testing.T) {
	f := newFixture(t, 24*time.Hour)
	ctx := context.Background()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	before, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)

	_, err = f.svc.ResendVerification(ctx, "alice@x.com")
	assert.ErrorIs(t, err, application.ErrNotificationFailure)

	after, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, before.EmailVerificationToken, after.EmailVerificationToken)
}

func TestVerifyEmail_PublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	f := newFixture(t, 24*time.Hour, application.WithEvents(pub))
	ctx := context.Background()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)
	stored, err := f.repo.FindByID(ctx, res.UserID)
	require.NoError(t, err)

	_, err = f.svc.VerifyEmail(ctx, stored.EmailVerificationToken)
	require.NoError(t, err)
	assert.Equal(t, []string{application.EventUserVerified}, pub.types())
	assert.Equal(t, res.UserID, pub.events[0].UserID)
}
