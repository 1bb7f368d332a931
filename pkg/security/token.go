package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var ErrTokenInvalid = errors.New("authorization token invalid")

func secret() []byte {
	return []byte(viper.GetString("jwt.secret"))
}

// MakeAuthToken signs a HS256 session token whose subject is the user's uuid.
// Lifetime comes from jwt.expire_minutes.
func MakeAuthToken(userID string, now time.Time) (token string, expiresAt time.Time, err error) {
	expiresAt = now.Add(time.Duration(viper.GetInt("jwt.expire_minutes")) * time.Minute)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	token, err = t.SignedString(secret())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token, %w", err)
	}

	return token, expiresAt, nil
}

// ParseAuthToken validates the signature and expiry of token and returns the
// user uuid it was issued for
func ParseAuthToken(token string) (string, error) {
	var claims jwt.RegisteredClaims

	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	if !t.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
