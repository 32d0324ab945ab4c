package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess marks access tokens; refresh tokens are rejected.
const TokenTypeAccess = "access"

// Claims are the claims of an access token. Subject is the user ID.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 access tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify checks signature, expiry and type, and returns the subject.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: userID}, nil
}
