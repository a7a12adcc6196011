package models

import "time"

// PostStat is the slim post projection shown on the dashboard.
type PostStat struct {
	ID          string
	Title       string
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
}

type DashboardTotals struct {
	TotalPosts     int64
	TotalViews     int64
	TotalComments  int64
	TotalBookmarks int64
}

type Dashboard struct {
	Totals       DashboardTotals
	RecentPosts  []PostStat
	PopularPosts []PostStat
}
