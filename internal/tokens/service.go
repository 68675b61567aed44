// Package tokens issues and verifies the signed bearer tokens handed out at login.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"bloglist/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "bloglist-api"
	Audience = "bloglist-client"
)

// Claims are the JWT claims carried by a login token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs tokens with a shared HMAC secret. Tokens are stateless; a zero TTL
// issues tokens without an expiry.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService returns a Service signing with secret.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user.
func (s *Service) Issue(userID uint, username string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature, issuer, audience and expiry of token and returns the
// user ID it was issued for. Failures are UNAUTHORIZED AppErrors.
func (s *Service) Verify(token string) (uint, error) {
	if token == "" {
		return 0, models.NewUnauthorizedError("token missing or invalid")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, &models.AppError{Code: models.CodeUnauthorized, Message: "token expired", Err: err}
		}
		return 0, &models.AppError{Code: models.CodeUnauthorized, Message: "token invalid", Err: err}
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, strconv.IntSize)
	if err != nil || userID == 0 {
		return 0, models.NewUnauthorizedError("token invalid")
	}
	return uint(userID), nil
}
