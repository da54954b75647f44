// Package auth issues and verifies the two credentials the service
// accepts: bcrypt password hashes and HS256 access tokens. The token
// signing key mixes the application secret with the account's current
// password hash, so re-hashing a password revokes every token issued
// for that account without keeping a denylist.
package auth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/platform/id"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
)

// HashPassword derives a bcrypt hash for storage. Each call salts
// anew, so hashing the same password twice yields distinct digests.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword checks a candidate password against the user's stored
// hash. Failures report bare UNAUTHORIZED so callers cannot leak which
// part of the credential was wrong.
func VerifyPassword(u user.User, password string) error {
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "the credentials do not match an account")
	}
	return nil
}

// signingKey mixes the application secret with the account's current
// password hash. The bcrypt digest embeds its salt, so any re-hash
// rotates the key.
func signingKey(secret []byte, u user.User) []byte {
	key := make([]byte, 0, len(secret)+len(u.PasswordHash))
	key = append(key, secret...)
	key = append(key, u.PasswordHash...)
	return key
}

// IssueToken signs an access token for the user. Tokens carry no
// expiry; they die when the account's password hash rotates.
func IssueToken(secret []byte, u user.User) (string, error) {
	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}
	claims := jwt.RegisteredClaims{
		Subject: strconv.FormatInt(u.ID, 10),
		ID:      jti,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey(secret, u))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// UnverifiedSubject extracts the user id a token claims to identify,
// without checking the signature. The caller resolves that user and
// then verifies the token against the resolved account with
// VerifyToken; nothing may trust the id before that second step.
func UnverifiedSubject(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0, apperrors.New(apperrors.CodeUnauthorized, "the access token is not parseable")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.CodeUnauthorized, "the access token names no account")
	}
	return userID, nil
}

// VerifyToken checks a token's signature against the resolved user's
// key material and confirms the subject names that same user. Every
// failure maps to bare UNAUTHORIZED.
func VerifyToken(secret []byte, u user.User, token string) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return signingKey(secret, u), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "the access token does not verify")
	}
	if claims.Subject != strconv.FormatInt(u.ID, 10) {
		return apperrors.New(apperrors.CodeUnauthorized, "the access token names a different account")
	}
	return nil
}
