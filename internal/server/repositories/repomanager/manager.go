package repomanager

import (
	"context"
	"database/sql"

	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/server/repositories/bookmarks"
	"github.com/mindbloging/mindbloging/internal/server/repositories/comments"
	"github.com/mindbloging/mindbloging/internal/server/repositories/posts"
	"github.com/mindbloging/mindbloging/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repositories on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Comments(db dbx.DBTX) comments.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
}
