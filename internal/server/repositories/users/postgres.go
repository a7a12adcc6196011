package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

const userColumns = `id, username, email, password_hash, google_id, first_name, last_name, avatar, bio, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills its ID and timestamps. Uniqueness of email,
// username and google_id is enforced by the table; a violation comes back as
// ErrEmailTaken, ErrUsernameTaken or ErrGoogleIDTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, google_id, first_name, last_name, avatar, bio)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, nullString(user.PasswordHash), nullString(user.GoogleID),
		user.FirstName, user.LastName, user.Avatar, user.Bio,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, mapWriteError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByEmailOrUsername returns every user owning email or username (at most two).
func (r *PostgresRepository) FindByEmailOrUsername(ctx context.Context, email, username string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $2`

	rows, err := r.db.QueryContext(ctx, query, email, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// LinkGoogle attaches googleID to a user that has none yet. avatar is only
// used when the user has no avatar. The update is conditional, so two
// concurrent links cannot both succeed: the loser gets ErrAlreadyLinked.
func (r *PostgresRepository) LinkGoogle(ctx context.Context, id, googleID, avatar string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET google_id = $2,
		     avatar = CASE WHEN avatar = '' THEN $3 ELSE avatar END,
		     updated_at = now()
		 WHERE id = $1 AND google_id IS NULL
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, googleID, avatar))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrAlreadyLinked
	}
	if err != nil {
		return nil, mapWriteError(err)
	}
	return u, nil
}

// UpdateProfile sets the non-nil fields of upd in a single statement.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	query :=
		`UPDATE users
		 SET first_name = COALESCE($2, first_name),
		     last_name = COALESCE($3, last_name),
		     bio = COALESCE($4, bio),
		     avatar = COALESCE($5, avatar),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id,
		nullString(upd.FirstName), nullString(upd.LastName), nullString(upd.Bio), nullString(upd.Avatar)))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u            models.User
		passwordHash sql.NullString
		googleID     sql.NullString
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &googleID,
		&u.FirstName, &u.LastName, &u.Avatar, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if googleID.Valid {
		u.GoogleID = &googleID.String
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapWriteError(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return ErrEmailTaken
		case "users_username_key":
			return ErrUsernameTaken
		case "users_google_id_key":
			return ErrGoogleIDTaken
		default:
			return fmt.Errorf("%s: %w", constraint, common.ErrDuplicateIdentity)
		}
	}
	return fmt.Errorf("db error: %w", err)
}
