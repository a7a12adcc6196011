package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
)

type BookmarkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewBookmarkService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *BookmarkService {
	return &BookmarkService{db: db, repomanager: m, logger: l.With("module", "bookmark_service")}
}

// Add bookmarks postID for userID. Adding twice is not an error.
func (s *BookmarkService) Add(ctx context.Context, userID, postID string) error {
	if _, err := s.repomanager.Posts(s.db).GetByID(ctx, postID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errPostNotFound
		}
		s.logger.Error(ctx, "post lookup failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.repomanager.Bookmarks(s.db).Add(ctx, userID, postID); err != nil {
		s.logger.Error(ctx, "add bookmark failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Remove drops the bookmark if it exists.
func (s *BookmarkService) Remove(ctx context.Context, userID, postID string) error {
	if err := s.repomanager.Bookmarks(s.db).Remove(ctx, userID, postID); err != nil {
		s.logger.Error(ctx, "remove bookmark failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *BookmarkService) List(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).ListBookmarked(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "list bookmarks failed", "error", err)
		return nil, common.ErrorInternal
	}
	return posts, nil
}
