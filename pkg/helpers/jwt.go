package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeSession      = "session"
	PurposeVerification = "email_verification"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTManager issues and validates HS256 tokens for sessions and email verification.
type JWTManager struct {
	Secret          []byte
	SessionTTL      time.Duration
	VerificationTTL time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, sessionTTL, verificationTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:          []byte(secret),
		SessionTTL:      sessionTTL,
		VerificationTTL: verificationTTL,
		now:             time.Now,
	}
}

// Claims carries either a user id (session) or an email (verification).
type Claims struct {
	UserID  string `json:"uid,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue signs claims that expire ttl from now. Every token gets a fresh jti,
// so two tokens for the same subject never compare equal.
func (m *JWTManager) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *JWTManager) IssueVerificationToken(email string) (string, time.Time, error) {
	return m.Issue(Claims{Email: email, Purpose: PurposeVerification}, m.VerificationTTL)
}

func (m *JWTManager) IssueSessionToken(userID, email string) (string, time.Time, error) {
	return m.Issue(Claims{UserID: userID, Email: email, Purpose: PurposeSession}, m.SessionTTL)
}

// Verify checks signature and expiry. Expired tokens yield ErrTokenExpired,
// everything else that fails yields ErrTokenInvalid.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
