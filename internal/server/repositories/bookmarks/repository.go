package bookmarks

import "context"

type Repository interface {
	Add(ctx context.Context, userID, postID string) error
	Remove(ctx context.Context, userID, postID string) error
	PostIDs(ctx context.Context, userID string) ([]string, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}
