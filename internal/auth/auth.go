package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey   = errors.New("invalid control key")
	ErrInvalidToken = errors.New("invalid token")
)

const controlScope = "control"

// HashControlKey returns the bcrypt hash to store in CONTROL_KEY_HASH.
func HashControlKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("control key must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashed), nil
}

// VerifyControlKey checks a plain key against its stored hash.
func VerifyControlKey(hashedKey, plainKey string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(plainKey)); err != nil {
		return ErrInvalidKey
	}
	return nil
}

// IssueToken signs a control token valid for ttl.
func IssueToken(secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"scope": controlScope,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates a control token's signature, expiry and scope.
func ParseToken(secret, token string) error {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["scope"] != controlScope {
		return ErrInvalidToken
	}
	return nil
}
