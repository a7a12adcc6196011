package posts

import (
	"context"

	"github.com/mindbloging/mindbloging/internal/server/models"
)

// StatOrder selects the ordering of ListStats.
type StatOrder int

const (
	ByNewest StatOrder = iota
	ByViews
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.PostFilter, includeDrafts bool) ([]*models.Post, error)
	ListBookmarked(ctx context.Context, userID string) ([]*models.Post, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Totals(ctx context.Context, authorID string) (posts int64, views int64, err error)
	ListStats(ctx context.Context, authorID string, order StatOrder, limit int) ([]models.PostStat, error)
}
