package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

// Unique-index violations on the users table. All of them match
// common.ErrDuplicateIdentity.
var (
	ErrEmailTaken    = fmt.Errorf("email: %w", common.ErrDuplicateIdentity)
	ErrUsernameTaken = fmt.Errorf("username: %w", common.ErrDuplicateIdentity)
	ErrGoogleIDTaken = fmt.Errorf("google id: %w", common.ErrDuplicateIdentity)
)

// ErrAlreadyLinked is returned by LinkGoogle when the user gained a Google
// identity between the read and the update.
var ErrAlreadyLinked = errors.New("google identity already linked")

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) ([]*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	LinkGoogle(ctx context.Context, id, googleID, avatar string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
}
