package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotJWT   = errors.New("token is not a JWT")
	ErrNoExpiry = errors.New("token carries no exp claim")
)

// TokenExpiry reads the exp claim of a bearer token. The signature is not
// checked: the backend issued the token and remains the only verifier, the
// portal only needs to know when to stop sending it.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrNotJWT
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// TokenExpired reports whether token is a JWT whose exp lies before now.
// Opaque tokens never expire locally.
func TokenExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
