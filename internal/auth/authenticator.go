// Package auth handles user registration, password checks and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/tripsplit/internal/models"
)

// Authenticator registers users and verifies their credentials.
// Password is the only implementation; the interface keeps the service
// layer free of bcrypt details.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
