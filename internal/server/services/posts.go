package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
)

const (
	DefaultPostLimit = 10
	MaxPostLimit     = 100
)

var (
	errPostNotFound       = common.Detail(common.ErrorNotFound, "Post not found")
	errPostUpdateNotOwner = common.Detail(common.ErrForbidden, "Not authorized to update this post")
	errPostDeleteNotOwner = common.Detail(common.ErrForbidden, "Not authorized to delete this post")
)

// PostInput is a new post.
type PostInput struct {
	Title         string
	Content       string
	Excerpt       string
	Category      string
	Tags          []string
	FeaturedImage string
	IsPublished   *bool
}

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, logger: l.With("module", "post_service")}
}

// List returns published posts matching f, newest first.
func (s *PostService) List(ctx context.Context, f models.PostFilter) ([]*models.Post, error) {
	f.Limit = clampLimit(f.Limit)
	f.Tags = cleanTags(f.Tags)
	f.Category = strings.TrimSpace(f.Category)

	posts, err := s.repomanager.Posts(s.db).List(ctx, f, false)
	if err != nil {
		return nil, s.internal(ctx, "list posts", err)
	}
	return posts, nil
}

// ListByAuthor returns the published posts of authorID.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).List(ctx, models.PostFilter{AuthorID: authorID}, false)
	if err != nil {
		return nil, s.internal(ctx, "list author posts", err)
	}
	return posts, nil
}

// ListOwn returns every post of userID, drafts included.
func (s *PostService) ListOwn(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).List(ctx, models.PostFilter{AuthorID: userID}, true)
	if err != nil {
		return nil, s.internal(ctx, "list own posts", err)
	}
	return posts, nil
}

// View returns a post and counts the read.
func (s *PostService) View(ctx context.Context, id string) (*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	views, err := repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, s.postError(ctx, err)
	}

	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.postError(ctx, err)
	}
	p.Views = views
	return p, nil
}

func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	p := &models.Post{
		AuthorID:      authorID,
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		Excerpt:       strings.TrimSpace(in.Excerpt),
		Category:      strings.TrimSpace(in.Category),
		Tags:          cleanTags(in.Tags),
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		IsPublished:   in.IsPublished == nil || *in.IsPublished,
	}
	if err := validatePost(p); err != nil {
		return nil, err
	}
	p.ReadingTime = models.ReadingTime(p.Content)

	repo := s.repomanager.Posts(s.db)
	created, err := repo.Create(ctx, p)
	if err != nil {
		return nil, s.internal(ctx, "create post", err)
	}

	full, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		return nil, s.postError(ctx, err)
	}
	s.logger.Info(ctx, "post created", "post_id", full.ID, "user_id", authorID)
	return full, nil
}

// Update applies upd to a post owned by userID.
func (s *PostService) Update(ctx context.Context, userID, id string, upd models.PostUpdate) (*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.postError(ctx, err)
	}
	if p.AuthorID != userID {
		return nil, errPostUpdateNotOwner
	}

	if upd.Tags != nil {
		upd.Tags = cleanTags(upd.Tags)
	}
	upd.Apply(p)
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if err := validatePost(p); err != nil {
		return nil, err
	}

	if err := repo.Update(ctx, p); err != nil {
		return nil, s.postError(ctx, err)
	}
	return p, nil
}

// Delete removes a post owned by userID. Its comments and bookmarks go with it.
func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Posts(s.db)

	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return s.postError(ctx, err)
	}
	if p.AuthorID != userID {
		return errPostDeleteNotOwner
	}

	if err := repo.Delete(ctx, id); err != nil {
		return s.postError(ctx, err)
	}
	s.logger.Info(ctx, "post deleted", "post_id", id, "user_id", userID)
	return nil
}

func (s *PostService) Categories(ctx context.Context) ([]string, error) {
	c, err := s.repomanager.Posts(s.db).Categories(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list categories", err)
	}
	return c, nil
}

func (s *PostService) Tags(ctx context.Context) ([]string, error) {
	t, err := s.repomanager.Posts(s.db).Tags(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list tags", err)
	}
	return t, nil
}

func (s *PostService) postError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errPostNotFound
	}
	return s.internal(ctx, "post query", err)
}

func (s *PostService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

func validatePost(p *models.Post) error {
	switch {
	case p.Title == "":
		return invalid("Title is required")
	case utf8.RuneCountInString(p.Title) > maxTitleLen:
		return invalid("Title cannot exceed 200 characters")
	case strings.TrimSpace(p.Content) == "":
		return invalid("Content is required")
	case utf8.RuneCountInString(p.Excerpt) > maxExcerptLen:
		return invalid("Excerpt cannot exceed 300 characters")
	case p.Category == "":
		return invalid("Category is required")
	}
	return nil
}

// cleanTags trims tags and drops empty ones.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPostLimit
	case limit > MaxPostLimit:
		return MaxPostLimit
	}
	return limit
}
