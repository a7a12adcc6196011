package services

import (
	"context"
	"database/sql"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/repositories/posts"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
)

// dashboardListSize is the length of the recent and popular post lists.
const dashboardListSize = 5

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *DashboardService {
	return &DashboardService{db: db, repomanager: m, logger: l.With("module", "dashboard_service")}
}

// Stats collects the author statistics of userID from one snapshot.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*models.Dashboard, error) {
	var d models.Dashboard

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		postRepo := s.repomanager.Posts(tx)

		var err error
		if d.Totals.TotalPosts, d.Totals.TotalViews, err = postRepo.Totals(ctx, userID); err != nil {
			return err
		}
		if d.Totals.TotalComments, err = s.repomanager.Comments(tx).CountByAuthor(ctx, userID); err != nil {
			return err
		}
		if d.Totals.TotalBookmarks, err = s.repomanager.Bookmarks(tx).CountByUser(ctx, userID); err != nil {
			return err
		}
		if d.RecentPosts, err = postRepo.ListStats(ctx, userID, posts.ByNewest, dashboardListSize); err != nil {
			return err
		}
		d.PopularPosts, err = postRepo.ListStats(ctx, userID, posts.ByViews, dashboardListSize)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "dashboard stats failed", "error", err)
		return nil, common.ErrorInternal
	}
	return &d, nil
}
