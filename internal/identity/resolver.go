// Package identity defines the boundary to the external authentication
// provider. The core consumes it as a pure function: opaque credential in,
// stable user identity plus display attributes out.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is a resolved user identity with display attributes.
type Identity struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// Resolver resolves an opaque credential to a user identity. Implementations
// must fail with an UNAUTHENTICATED AppError when the credential is invalid.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}
