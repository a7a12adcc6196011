package models

import "time"

type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Author    *Author
	ParentID  *string
	Content   string
	IsEdited  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
