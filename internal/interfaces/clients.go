// Package interfaces defines service contracts for dirkit
package interfaces

import (
	"context"

	"github.com/bobmcallan/dirkit/internal/models"
)

// TokenSource supplies the bearer token attached to directory API requests.
// Implementations fetch the token exactly once at construction; Token is a
// read-only accessor and never triggers a network call.
type TokenSource interface {
	// Token returns the access token obtained at construction
	Token() string
}

// DirectoryClient provides access to the directory admin API
type DirectoryClient interface {
	// FindUser searches for a user matching all given field=value pairs,
	// returning the first match or models.ErrNotFound
	FindUser(ctx context.Context, fields map[string]string) (*models.User, error)

	// FindUsers lists all users in the customer scope, following pagination
	FindUsers(ctx context.Context) ([]*models.User, error)

	// GetUser retrieves a user by email or ID, returning models.ErrNotFound
	// when the user does not exist
	GetUser(ctx context.Context, userKey string) (*models.User, error)

	// CreateUser creates a new user account
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	// UpdateUser applies a partial update to an existing user
	UpdateUser(ctx context.Context, userKey string, user *models.User) (*models.User, error)

	// DeleteUser removes a user account, returning models.ErrNotFound when absent
	DeleteUser(ctx context.Context, userKey string) error

	// GetUserAliases lists the email aliases of a user
	GetUserAliases(ctx context.Context, userKey string) ([]string, error)

	// GetGroup retrieves a group by email or ID, returning models.ErrNotFound
	// when the group does not exist
	GetGroup(ctx context.Context, groupKey string) (*models.Group, error)

	// IsEmailAUser reports whether the email resolves to a known user
	IsEmailAUser(ctx context.Context, email string) (bool, error)

	// IsEmailAGroup reports whether the email resolves to a known group
	IsEmailAGroup(ctx context.Context, email string) (bool, error)

	// IsEmailAUserOrGroup reports whether the email resolves to either,
	// checking users first and short-circuiting
	IsEmailAUserOrGroup(ctx context.Context, email string) (bool, error)
}
