package identity

import (
	"context"

	"commons/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTResolver resolves HMAC-signed bearer tokens issued by the external
// authentication provider. It only verifies and extracts; token issuance
// happens outside this system.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver returns a Resolver verifying tokens with the given secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// Resolve parses and validates the token, extracting the user identity from
// standard claims: "sub" (user ID), "email", and "name" (display name).
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthenticatedError("Invalid signing method")
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthenticatedError("Invalid token structure - missing subject")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, models.NewUnauthenticatedError("Invalid user ID in token")
	}

	id := &Identity{ID: userID}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}

	return id, nil
}
