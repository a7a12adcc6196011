package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

const selectComment = `SELECT c.id, c.post_id, c.author_id, u.username, u.first_name, u.last_name,
	c.parent_id, c.content, c.is_edited, c.created_at, c.updated_at
	FROM comments c JOIN users u ON u.id = c.author_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (post_id, author_id, parent_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	var parent sql.NullString
	if c.ParentID != nil {
		parent = sql.NullString{String: *c.ParentID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, c.PostID, c.AuthorID, parent, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx, selectComment+` WHERE c.id = $1`, id))
}

// ListByPost returns the comments of postID, newest first.
func (r *PostgresRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectComment+` WHERE c.post_id = $1 ORDER BY c.created_at DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateContent replaces the text of a comment and marks it edited.
func (r *PostgresRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	query :=
		`UPDATE comments SET content = $2, is_edited = TRUE, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, content)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE author_id = $1`, authorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*models.Comment, error) {
	var (
		c      = models.Comment{Author: &models.Author{}}
		parent sql.NullString
	)

	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author.Username, &c.Author.FirstName, &c.Author.LastName,
		&parent, &c.Content, &c.IsEdited, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.Author.ID = c.AuthorID
	if parent.Valid {
		c.ParentID = &parent.String
	}
	return &c, nil
}
