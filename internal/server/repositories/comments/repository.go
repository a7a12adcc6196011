package comments

import (
	"context"

	"github.com/mindbloging/mindbloging/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}
