package devapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"saborconquista/internal/model"
)

// Claims are the claims of the bearer tokens the dev backend issues.
type Claims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 tokens.
type TokenIssuer struct {
	secretKey string
	ttl       time.Duration
}

func NewTokenIssuer(secretKey string, expirationHours int64) *TokenIssuer {
	return &TokenIssuer{secretKey: secretKey, ttl: time.Hour * time.Duration(expirationHours)}
}

// Issue signs a token for the user.
func (ti *TokenIssuer) Issue(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and checks signature, algorithm and expiry.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(ti.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
