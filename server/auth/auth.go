// Package auth issues and verifies the bearer tokens protecting the API.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Issuer is the JWT issuer claim value.
	Issuer = "memori"
	// KeyID identifies the signing key in the token header.
	KeyID = "v1"
	// AccessTokenDuration is the lifetime of an issued token.
	AccessTokenDuration = 7 * 24 * time.Hour

	// AudienceName is the JWT audience claim value.
	AudienceName = "user.access-token"
)

// ClaimsMessage carries the registered claims plus the user role.
type ClaimsMessage struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the user. The subject is the
// user id rendered as a string.
func GenerateAccessToken(userID int32, role string, now time.Time, secret []byte) (string, error) {
	expires := now.Add(AccessTokenDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AudienceName},
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	token.Header["kid"] = KeyID

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// Authenticate parses and validates a token, returning the user id and
// role carried in it.
func Authenticate(tokenString string, secret []byte) (int32, string, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AudienceName),
	)
	if err != nil {
		return 0, "", errors.Wrap(err, "invalid access token")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, "", errors.Wrap(err, "malformed token subject")
	}
	return int32(userID), claims.Role, nil
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
