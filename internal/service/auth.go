package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/types"
)

const tokenIssuer = "recipe-api"

// AuthService issues and validates access tokens.
type AuthService struct {
	users     *UserService
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(users *UserService, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Login exchanges credentials for a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.GenerateToken(user)
}

// GenerateToken signs an HS256 token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ValidateToken verifies signature, issuer and expiry.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.Unauthorized("token expired")
	}
	if err != nil || claims.UserID == 0 {
		return nil, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}

// ResolvePrincipal validates a token and loads the active user behind it.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return auth.Principal{}, err
	}
	return s.users.Principal(ctx, claims.UserID)
}
