// Package auth authenticates the single configured admin.
package auth

import (
	"errors"
	"time"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")

type Service interface {
	// Login verifies the admin password and returns a signed access token.
	Login(password string) (string, error)
	// Validate parses a token and returns its claims.
	Validate(token string) (*models.AdminClaims, error)
}

type service struct {
	adminID      int64
	passwordHash string
	secret       []byte
	ttl          time.Duration
}

func NewService(adminID int64, passwordHash, secret string, ttl time.Duration) Service {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &service{
		adminID:      adminID,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		ttl:          ttl,
	}
}

func (s *service) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := &models.AdminClaims{
		AdminID: s.adminID,
		Role:    "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *service) Validate(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || claims.AdminID != s.adminID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
