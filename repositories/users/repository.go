package users

import (
	"context"

	"github.com/messagely/core/models"
)

// Repository is the user store. Every operation issues exactly one
// parameterized query; concurrent calls are independent and rely on the
// database's own consistency guarantees.
type Repository interface {
	// Create inserts a new user. The store assigns JoinedAt; LastLoginAt
	// starts out null. A taken username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindCredential returns only the stored password hash for username,
	// or common.ErrorNotFound.
	FindCredential(ctx context.Context, username string) (string, error)

	// GetByUsername returns the public profile (no hash), or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// All returns summaries of every user in storage order. The order is
	// not contractual.
	All(ctx context.Context) ([]models.UserSummary, error)

	// TouchLogin sets last_login_at to the current server time, or returns
	// common.ErrorNotFound when username is absent.
	TouchLogin(ctx context.Context, username string) error
}
