package rest

import (
	"time"

	"github.com/mindbloging/mindbloging/internal/server/models"
)

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	GoogleLinked bool      `json:"googleLinked"`
	HasPassword  bool      `json:"hasPassword"`
	Bookmarks    []string  `json:"bookmarks,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		Bio:          u.Bio,
		GoogleLinked: u.HasGoogle(),
		HasPassword:  u.HasPassword(),
		Bookmarks:    u.Bookmarks,
		CreatedAt:    u.CreatedAt,
	}
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type userEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    userResponse `json:"user"`
}

type authorResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toAuthor(a *models.Author) *authorResponse {
	if a == nil {
		return nil
	}
	return &authorResponse{ID: a.ID, Username: a.Username, FirstName: a.FirstName, LastName: a.LastName}
}

type postResponse struct {
	ID            string          `json:"id"`
	Author        *authorResponse `json:"author"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       string          `json:"excerpt"`
	Category      string          `json:"category"`
	Tags          []string        `json:"tags"`
	FeaturedImage string          `json:"featuredImage"`
	IsPublished   bool            `json:"isPublished"`
	Views         int64           `json:"views"`
	ReadingTime   int             `json:"readingTime"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toPost(p *models.Post) postResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postResponse{
		ID:            p.ID,
		Author:        toAuthor(p.Author),
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Category:      p.Category,
		Tags:          tags,
		FeaturedImage: p.FeaturedImage,
		IsPublished:   p.IsPublished,
		Views:         p.Views,
		ReadingTime:   p.ReadingTime,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPosts(ps []*models.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPost(p))
	}
	return out
}

type postEnvelope struct {
	Message string       `json:"message"`
	Post    postResponse `json:"post"`
}

type postListResponse struct {
	Posts []postResponse `json:"posts"`
}

type commentResponse struct {
	ID            string          `json:"id"`
	PostID        string          `json:"postId"`
	Author        *authorResponse `json:"author"`
	ParentComment *string         `json:"parentComment"`
	Content       string          `json:"content"`
	IsEdited      bool            `json:"isEdited"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toComment(c *models.Comment) commentResponse {
	return commentResponse{
		ID:            c.ID,
		PostID:        c.PostID,
		Author:        toAuthor(c.Author),
		ParentComment: c.ParentID,
		Content:       c.Content,
		IsEdited:      c.IsEdited,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type commentEnvelope struct {
	Message string          `json:"message"`
	Comment commentResponse `json:"comment"`
}

type bookmarkResponse struct {
	Message    string `json:"message"`
	Bookmarked bool   `json:"bookmarked"`
}

type postStatResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
}

type statsResponse struct {
	Stats struct {
		TotalPosts     int64 `json:"totalPosts"`
		TotalViews     int64 `json:"totalViews"`
		TotalComments  int64 `json:"totalComments"`
		TotalBookmarks int64 `json:"totalBookmarks"`
	} `json:"stats"`
	RecentPosts  []postStatResponse `json:"recentPosts"`
	PopularPosts []postStatResponse `json:"popularPosts"`
}

func toStats(d *models.Dashboard) statsResponse {
	var r statsResponse
	r.Stats.TotalPosts = d.Totals.TotalPosts
	r.Stats.TotalViews = d.Totals.TotalViews
	r.Stats.TotalComments = d.Totals.TotalComments
	r.Stats.TotalBookmarks = d.Totals.TotalBookmarks
	r.RecentPosts = toPostStats(d.RecentPosts)
	r.PopularPosts = toPostStats(d.PopularPosts)
	return r
}

func toPostStats(in []models.PostStat) []postStatResponse {
	out := make([]postStatResponse, 0, len(in))
	for _, s := range in {
		out = append(out, postStatResponse(s))
	}
	return out
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
