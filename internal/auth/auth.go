package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jadhavharshh/portfolio-api/internal/models"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 72 * time.Hour

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid token")

// Credentials holds the configured admin identity.
type Credentials struct {
	Username string
	Password string
}

// Validate reports whether the submitted pair matches the configured
// credentials. Both fields are compared in constant time.
func (c Credentials) Validate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK
}

// TokenManager issues and verifies signed session tokens. Tokens are
// stateless: validity is determined entirely by the signature and the
// embedded expiry.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the given principal, valid for TokenTTL.
func (m *TokenManager) Issue(p models.Principal) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  p.Username,
		"role": p.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(TokenTTL).Unix(),
	})
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and returns the embedded
// principal. Any failure (malformed token, wrong signature, expiry)
// comes back as ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return models.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return models.Principal{}, ErrInvalidToken
	}
	return models.Principal{Username: sub, Role: role}, nil
}
