package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthService checks bearer tokens issued by the hosted auth provider. It
// only knows the shared HS256 secret; users live with the provider.
type AuthService struct {
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// GenerateJWT mints a token for userID. The server never calls it; the ops
// CLI does, to exercise the API locally.
func (s *AuthService) GenerateJWT(userID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyJWT returns the user id in the token's sub claim.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
