package auth

import (
	"fmt"
	"shop-relay/domain"
	"shop-relay/errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "shop-relay"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the chat identity carried by the token: "admin" for the admin role, the user id otherwise.
func (c CustomClaims) Identity() string {
	if slices.Contains(c.Roles, string(domain.RoleAdmin)) {
		return domain.AdminIdentity
	}
	return c.UserID
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	key []byte
}

func NewTokens(secret string) Tokens {
	return Tokens{key: []byte(secret)}
}

// GenerateToken creates a signed JWT for a specific user.
func (t Tokens) GenerateToken(userID string, roles []string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (t Tokens) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, errors.ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	if claims.Identity() == "" {
		return nil, fmt.Errorf("%w: no user id", errors.ErrInvalidToken)
	}
	return claims, nil
}
