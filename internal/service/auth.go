package service

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
)

// AuthService - issues and checks the signed tokens that prove a participant identity.
type AuthService interface {
	IssueToken(participant string) (string, error)
	VerifyToken(token string) (string, error)
}

type authService struct {
	clock     clock.Clock
	secretKey []byte
	ttl       time.Duration
}

func NewAuthService(clk clock.Clock, secretKey string, ttl time.Duration) AuthService {
	return &authService{
		clock:     clk,
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

func (that *authService) IssueToken(participant string) (string, error) {
	now := that.clock.Now()

	claims := jwt.RegisteredClaims{
		Subject:   participant,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(that.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyToken - returns the participant the token was issued to.
func (that *authService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(that.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", apperror.ErrInvalidToken)
	}

	return claims.Subject, nil
}
