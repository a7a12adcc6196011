package rest

import (
	"context"
	"time"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/auth"
	"github.com/mindbloging/mindbloging/internal/server/config"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/services"
)

const (
	testSecret = "test-secret"
	aliceID    = "11111111-1111-4111-8111-111111111111"
	bobID      = "22222222-2222-4222-8222-222222222222"
	postID     = "33333333-3333-4333-8333-333333333333"
	commentID  = "44444444-4444-4444-8444-444444444444"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	googleErr   error
	credential  string
	meCalls     int
	users       map[string]*models.User
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.AuthResult{Token: "tok", User: &models.User{ID: aliceID, Username: in.Username, Email: in.Email}}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*services.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AuthResult{Token: "tok", User: &models.User{ID: aliceID, Email: email}}, nil
}

func (f *fakeUsers) LoginWithGoogle(_ context.Context, credential string) (*services.AuthResult, error) {
	f.credential = credential
	if f.googleErr != nil {
		return nil, f.googleErr
	}
	return &services.AuthResult{Token: "tok", User: &models.User{ID: aliceID}}, nil
}

func (f *fakeUsers) Me(_ context.Context, userID string) (*models.User, error) {
	f.meCalls++
	u, ok := f.users[userID]
	if !ok {
		return nil, common.Detail(common.ErrorNotFound, "User not found")
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	u, err := f.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd.Apply(u)
	return u, nil
}

type fakePosts struct {
	posts      map[string]*models.Post
	lastFilter models.PostFilter
	deleted    []string
}

func (f *fakePosts) List(_ context.Context, flt models.PostFilter) ([]*models.Post, error) {
	f.lastFilter = flt
	out := make([]*models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePosts) ListByAuthor(_ context.Context, authorID string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID && p.IsPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) ListOwn(_ context.Context, userID string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.AuthorID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) View(_ context.Context, id string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, common.Detail(common.ErrorNotFound, "Post not found")
	}
	p.Views++
	return p, nil
}

func (f *fakePosts) Create(_ context.Context, authorID string, in services.PostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, common.Detail(common.ErrorValidation, "Title is required")
	}
	return &models.Post{ID: postID, AuthorID: authorID, Title: in.Title, Content: in.Content, IsPublished: true}, nil
}

func (f *fakePosts) Update(_ context.Context, userID, id string, upd models.PostUpdate) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, common.Detail(common.ErrorNotFound, "Post not found")
	}
	if p.AuthorID != userID {
		return nil, common.Detail(common.ErrForbidden, "Not authorized to update this post")
	}
	upd.Apply(p)
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, userID, id string) error {
	p, ok := f.posts[id]
	if !ok {
		return common.Detail(common.ErrorNotFound, "Post not found")
	}
	if p.AuthorID != userID {
		return common.Detail(common.ErrForbidden, "Not authorized to delete this post")
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePosts) Categories(context.Context) ([]string, error) {
	return []string{"go", "web"}, nil
}

func (f *fakePosts) Tags(context.Context) ([]string, error) {
	return []string{}, nil
}

type fakeComments struct {
	parentID *string
	created  bool
}

func (f *fakeComments) ListByPost(context.Context, string) ([]*models.Comment, error) {
	return []*models.Comment{{ID: commentID, PostID: postID, AuthorID: aliceID, Content: "hi"}}, nil
}

func (f *fakeComments) Create(_ context.Context, authorID, pid string, parentID *string, content string) (*models.Comment, error) {
	f.created = true
	f.parentID = parentID
	return &models.Comment{ID: commentID, PostID: pid, AuthorID: authorID, ParentID: parentID, Content: content}, nil
}

func (f *fakeComments) Update(_ context.Context, userID, id, content string) (*models.Comment, error) {
	if userID != aliceID {
		return nil, common.Detail(common.ErrForbidden, "Not authorized to update this comment")
	}
	return &models.Comment{ID: id, PostID: postID, AuthorID: userID, Content: content, IsEdited: true}, nil
}

func (f *fakeComments) Delete(_ context.Context, userID, _ string) error {
	if userID != aliceID {
		return common.Detail(common.ErrForbidden, "Not authorized to delete this comment")
	}
	return nil
}

type fakeBookmarks struct {
	added map[string]bool
}

func (f *fakeBookmarks) Add(_ context.Context, userID, pid string) error {
	if pid != postID {
		return common.Detail(common.ErrorNotFound, "Post not found")
	}
	f.added[userID+"/"+pid] = true
	return nil
}

func (f *fakeBookmarks) Remove(_ context.Context, userID, pid string) error {
	delete(f.added, userID+"/"+pid)
	return nil
}

func (f *fakeBookmarks) List(context.Context, string) ([]*models.Post, error) {
	return nil, nil
}

type fakeDashboard struct{}

func (fakeDashboard) Stats(context.Context, string) (*models.Dashboard, error) {
	return &models.Dashboard{
		Totals:      models.DashboardTotals{TotalPosts: 2, TotalViews: 40, TotalComments: 3, TotalBookmarks: 1},
		RecentPosts: []models.PostStat{{ID: postID, Title: "Hello", Views: 40, IsPublished: true}},
	}, nil
}

type fakeMedia struct{}

func (fakeMedia) PresignUpload(_ context.Context, userID, contentType string) (*models.UploadTarget, error) {
	if contentType != "image/png" {
		return nil, common.Detail(common.ErrorValidation, "Unsupported content type")
	}
	key := "users/" + userID + "/x"
	return &models.UploadTarget{Key: key, URL: "https://s3.local/" + key}, nil
}

type testEnv struct {
	server    *Server
	tokens    *auth.TokenService
	users     *fakeUsers
	posts     *fakePosts
	comments  *fakeComments
	bookmarks *fakeBookmarks
}

func newTestEnv() *testEnv {
	return newTestEnvWith(func(*config.Config) {})
}

func newTestEnvWith(configure func(*config.Config)) *testEnv {
	env := &testEnv{
		tokens: auth.NewTokenService([]byte(testSecret), time.Hour),
		users: &fakeUsers{users: map[string]*models.User{
			aliceID: {ID: aliceID, Username: "alice", Email: "alice@example.com"},
		}},
		posts: &fakePosts{posts: map[string]*models.Post{
			postID: {ID: postID, AuthorID: aliceID, Title: "Hello", IsPublished: true},
		}},
		comments:  &fakeComments{},
		bookmarks: &fakeBookmarks{added: map[string]bool{}},
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LoginRateLimit = 0
	configure(cfg)

	env.server = NewServer(cfg, Deps{
		Tokens:    env.tokens,
		Users:     env.users,
		Posts:     env.posts,
		Comments:  env.comments,
		Bookmarks: env.bookmarks,
		Dashboard: fakeDashboard{},
		Media:     fakeMedia{},
	}, logging.Discard())

	return env
}

func (e *testEnv) token(userID string) string {
	tok, err := e.tokens.GenerateToken(userID)
	if err != nil {
		panic(err)
	}
	return tok
}
