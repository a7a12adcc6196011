package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
)

const maxCommentLen = 1000

var (
	errCommentNotFound       = common.Detail(common.ErrorNotFound, "Comment not found")
	errParentNotFound        = common.Detail(common.ErrorNotFound, "Parent comment not found")
	errCommentUpdateNotOwner = common.Detail(common.ErrForbidden, "Not authorized to update this comment")
	errCommentDeleteNotOwner = common.Detail(common.ErrForbidden, "Not authorized to delete this comment")
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *CommentService {
	return &CommentService{db: db, repomanager: m, logger: l.With("module", "comment_service")}
}

// ListByPost returns the comments of postID, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.repomanager.Comments(s.db).ListByPost(ctx, postID)
	if err != nil {
		s.logger.Error(ctx, "list comments failed", "error", err)
		return nil, common.ErrorInternal
	}
	return comments, nil
}

// Create adds a comment by authorID. The post must exist and a parent, when
// given, must belong to the same post. The checks and the insert share a
// transaction.
func (s *CommentService) Create(ctx context.Context, authorID, postID string, parentID *string, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Posts(tx).GetByID(ctx, postID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return errPostNotFound
			}
			return err
		}

		comments := s.repomanager.Comments(tx)
		if parentID != nil {
			parent, err := comments.GetByID(ctx, *parentID)
			if errors.Is(err, common.ErrorNotFound) || (err == nil && parent.PostID != postID) {
				return errParentNotFound
			}
			if err != nil {
				return err
			}
		}

		c, err := comments.Create(ctx, &models.Comment{PostID: postID, AuthorID: authorID, ParentID: parentID, Content: content})
		if err != nil {
			return err
		}
		created, err = comments.GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, s.commentError(ctx, err)
	}
	return created, nil
}

// Update replaces the content of a comment owned by userID and marks it edited.
func (s *CommentService) Update(ctx context.Context, userID, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return nil, err
	}

	repo := s.repomanager.Comments(s.db)
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.commentError(ctx, err)
	}
	if c.AuthorID != userID {
		return nil, errCommentUpdateNotOwner
	}

	updated, err := repo.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, s.commentError(ctx, err)
	}
	return updated, nil
}

// Delete removes a comment owned by userID.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Comments(s.db)
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return s.commentError(ctx, err)
	}
	if c.AuthorID != userID {
		return errCommentDeleteNotOwner
	}
	if err := repo.Delete(ctx, id); err != nil {
		return s.commentError(ctx, err)
	}
	return nil
}

func (s *CommentService) commentError(ctx context.Context, err error) error {
	var de *common.DetailedError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, common.ErrorNotFound) {
		return errCommentNotFound
	}
	s.logger.Error(ctx, "comment query failed", "error", err)
	return common.ErrorInternal
}

func validateComment(content string) error {
	if content == "" {
		return invalid("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return invalid("Comment cannot exceed 1000 characters")
	}
	return nil
}
