package models

import (
	"math"
	"strings"
	"time"
)

// WordsPerMinute is the reading speed used for Post.ReadingTime.
const WordsPerMinute = 200

// Author is the public summary of a user embedded in posts and comments.
type Author struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
}

type Post struct {
	ID            string
	AuthorID      string
	Author        *Author
	Title         string
	Content       string
	Excerpt       string
	Category      string
	Tags          []string
	FeaturedImage string
	IsPublished   bool
	Views         int64
	ReadingTime   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReadingTime returns the estimated reading time of content in minutes.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

// PostFilter narrows post listings. Empty fields do not filter.
type PostFilter struct {
	Category string
	Tags     []string
	AuthorID string
	Limit    int
}

// PostUpdate carries the optional fields of a post edit.
type PostUpdate struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Category      *string
	Tags          []string
	FeaturedImage *string
	IsPublished   *bool
}

// Apply copies the supplied fields onto p and refreshes the reading time.
func (u PostUpdate) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Excerpt != nil {
		p.Excerpt = *u.Excerpt
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Tags != nil {
		p.Tags = u.Tags
	}
	if u.FeaturedImage != nil {
		p.FeaturedImage = *u.FeaturedImage
	}
	if u.IsPublished != nil {
		p.IsPublished = *u.IsPublished
	}
	p.ReadingTime = ReadingTime(p.Content)
}
