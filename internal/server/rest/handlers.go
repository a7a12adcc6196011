package rest

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	LoginWithGoogle(ctx context.Context, credential string) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
}

type PostService interface {
	List(ctx context.Context, f models.PostFilter) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	ListOwn(ctx context.Context, userID string) ([]*models.Post, error)
	View(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, authorID string, in services.PostInput) (*models.Post, error)
	Update(ctx context.Context, userID, id string, upd models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, userID, id string) error
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}

type CommentService interface {
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Create(ctx context.Context, authorID, postID string, parentID *string, content string) (*models.Comment, error)
	Update(ctx context.Context, userID, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, userID, id string) error
}

type BookmarkService interface {
	Add(ctx context.Context, userID, postID string) error
	Remove(ctx context.Context, userID, postID string) error
	List(ctx context.Context, userID string) ([]*models.Post, error)
}

type DashboardService interface {
	Stats(ctx context.Context, userID string) (*models.Dashboard, error)
}

type MediaService interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*models.UploadTarget, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Tokens    TokenVerifier
	Users     UserService
	Posts     PostService
	Comments  CommentService
	Bookmarks BookmarkService
	Dashboard DashboardService
	Media     MediaService
}

type handlers struct {
	Deps
	logger logging.Logger
}

func newHandlers(d Deps, l logging.Logger) *handlers {
	return &handlers{Deps: d, logger: l}
}

// pathID returns the uuid path parameter name. Malformed ids cannot match a
// stored row, so they yield notFound without touching the store.
func pathID(c *fiber.Ctx, name string, notFound string) (string, error) {
	id := c.Params(name)
	if !validUUID(id) {
		return "", notFoundErr(notFound)
	}
	return id, nil
}

func notFoundErr(msg string) error {
	return common.Detail(common.ErrorNotFound, msg)
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errBadBody
	}
	return nil
}
