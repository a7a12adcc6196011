package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

const selectPost = `SELECT p.id, p.author_id, u.username, u.first_name, u.last_name,
	p.title, p.content, p.excerpt, p.category, p.tags, p.featured_image,
	p.is_published, p.views, p.reading_time, p.created_at, p.updated_at
	FROM posts p JOIN users u ON u.id = p.author_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db   dbx.DBTX
	pgtm *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, pgtm: pgtype.NewMap()}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (author_id, title, content, excerpt, category, tags, featured_image, is_published, reading_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, views, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.AuthorID, post.Title, post.Content, post.Excerpt, post.Category, nonNilTags(post.Tags),
		post.FeaturedImage, post.IsPublished, post.ReadingTime,
	).Scan(&post.ID, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return r.scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, id))
}

// IncrementViews bumps the view counter and returns the new value.
func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query := `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`

	var views int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return views, nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) error {
	query :=
		`UPDATE posts
		 SET title = $2, content = $3, excerpt = $4, category = $5, tags = $6,
		     featured_image = $7, is_published = $8, reading_time = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Title, post.Content, post.Excerpt, post.Category, nonNilTags(post.Tags),
		post.FeaturedImage, post.IsPublished, post.ReadingTime,
	).Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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

// List returns posts newest first. Category matches as a case-insensitive
// substring, tags match when any post tag equals any filter tag ignoring case.
func (r *PostgresRepository) List(ctx context.Context, f models.PostFilter, includeDrafts bool) ([]*models.Post, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !includeDrafts {
		conds = append(conds, "p.is_published")
	}
	if f.AuthorID != "" {
		conds = append(conds, "p.author_id = "+arg(f.AuthorID))
	}
	if f.Category != "" {
		conds = append(conds, "p.category ILIKE '%' || "+arg(likeEscaper.Replace(f.Category))+" || '%'")
	}
	if len(f.Tags) > 0 {
		lowered := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			lowered[i] = strings.ToLower(t)
		}
		conds = append(conds, "EXISTS (SELECT 1 FROM unnest(p.tags) AS t WHERE lower(t) = ANY("+arg(lowered)+"))")
	}

	query := selectPost
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	return r.queryPosts(ctx, query, args...)
}

// ListBookmarked returns the posts bookmarked by userID, most recently
// bookmarked first.
func (r *PostgresRepository) ListBookmarked(ctx context.Context, userID string) ([]*models.Post, error) {
	query := selectPost + ` JOIN bookmarks b ON b.post_id = p.id WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	return r.queryPosts(ctx, query, userID)
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		p, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT category FROM posts WHERE is_published ORDER BY category`)
}

func (r *PostgresRepository) Tags(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT tag FROM posts, unnest(tags) AS tag WHERE is_published ORDER BY tag`)
}

// Totals returns the number of posts written by authorID and their summed views.
func (r *PostgresRepository) Totals(ctx context.Context, authorID string) (int64, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(views), 0) FROM posts WHERE author_id = $1`

	var posts, views int64
	if err := r.db.QueryRowContext(ctx, query, authorID).Scan(&posts, &views); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return posts, views, nil
}

func (r *PostgresRepository) ListStats(ctx context.Context, authorID string, order StatOrder, limit int) ([]models.PostStat, error) {
	orderBy := "created_at DESC"
	if order == ByViews {
		orderBy = "views DESC, created_at DESC"
	}
	query := `SELECT id, title, views, is_published, created_at FROM posts WHERE author_id = $1 ORDER BY ` + orderBy + ` LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.PostStat{}
	for rows.Next() {
		var s models.PostStat
		if err := rows.Scan(&s.ID, &s.Title, &s.Views, &s.IsPublished, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanPost(row scanner) (*models.Post, error) {
	p := models.Post{Author: &models.Author{}}

	err := row.Scan(&p.ID, &p.AuthorID, &p.Author.Username, &p.Author.FirstName, &p.Author.LastName,
		&p.Title, &p.Content, &p.Excerpt, &p.Category, r.pgtm.SQLScanner(&p.Tags), &p.FeaturedImage,
		&p.IsPublished, &p.Views, &p.ReadingTime, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Author.ID = p.AuthorID
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
