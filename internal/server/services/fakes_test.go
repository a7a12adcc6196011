package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/dbx"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/identity"
	"github.com/mindbloging/mindbloging/internal/server/models"
	bookmarksrepo "github.com/mindbloging/mindbloging/internal/server/repositories/bookmarks"
	commentsrepo "github.com/mindbloging/mindbloging/internal/server/repositories/comments"
	postsrepo "github.com/mindbloging/mindbloging/internal/server/repositories/posts"
	usersrepo "github.com/mindbloging/mindbloging/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func strPtr(s string) *string { return &s }

var testLogger logging.Logger = logging.Discard()

// --- repository manager ---

type fakeRepoManager struct {
	users     *fakeUsersRepo
	posts     *fakePostsRepo
	comments  *fakeCommentsRepo
	bookmarks *fakeBookmarksRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:     newFakeUsersRepo(),
		posts:     &fakePostsRepo{items: map[string]*models.Post{}},
		comments:  &fakeCommentsRepo{items: map[string]*models.Comment{}},
		bookmarks: &fakeBookmarksRepo{items: map[string]map[string]bool{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *fakeRepoManager) Posts(dbx.DBTX) postsrepo.Repository          { return m.posts }
func (m *fakeRepoManager) Comments(dbx.DBTX) commentsrepo.Repository    { return m.comments }
func (m *fakeRepoManager) Bookmarks(dbx.DBTX) bookmarksrepo.Repository  { return m.bookmarks }

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	items  map[string]*models.User
	nextID int
	writes int

	// beforeCreate may fail a Create before the uniqueness checks, to
	// simulate a concurrent writer.
	beforeCreate func(u *models.User) error
	findErr      error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{items: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", f.nextID)
	}
	f.items[u.ID] = &u
	return &u
}

func (f *fakeUsersRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.beforeCreate != nil {
		if err := f.beforeCreate(u); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		switch {
		case e.Email == u.Email:
			return nil, usersrepo.ErrEmailTaken
		case e.Username == u.Username:
			return nil, usersrepo.ErrUsernameTaken
		case u.GoogleID != nil && e.GoogleID != nil && *e.GoogleID == *u.GoogleID:
			return nil, usersrepo.ErrGoogleIDTaken
		}
	}
	f.nextID++
	f.writes++
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.items[u.ID] = clone(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.items[id]; ok {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.items {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByEmailOrUsername(ctx context.Context, email, username string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*models.User
	for _, u := range f.items {
		if u.Email == email || u.Username == username {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsersRepo) LinkGoogle(ctx context.Context, id, googleID, avatar string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok || u.GoogleID != nil {
		return nil, usersrepo.ErrAlreadyLinked
	}
	for _, e := range f.items {
		if e.GoogleID != nil && *e.GoogleID == googleID {
			return nil, usersrepo.ErrGoogleIDTaken
		}
	}
	f.writes++
	u.GoogleID = &googleID
	if u.Avatar == "" {
		u.Avatar = avatar
	}
	return clone(u), nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f.writes++
	upd.Apply(u)
	return clone(u), nil
}

// --- posts ---

type fakePostsRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Post
	nextID int
	err    error

	lastFilter        models.PostFilter
	lastIncludeDrafts bool
	bookmarked        map[string][]string
}

func (f *fakePostsRepo) add(p models.Post) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if p.ID == "" {
		p.ID = fmt.Sprintf("p-%d", f.nextID)
	}
	if p.Author == nil {
		p.Author = &models.Author{ID: p.AuthorID}
	}
	f.items[p.ID] = &p
	return &p
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.add(*p), nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePostsRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	p.Views++
	return p.Views, nil
}

func (f *fakePostsRepo) Update(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *p
	f.items[p.ID] = &c
	return nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakePostsRepo) List(ctx context.Context, filter models.PostFilter, includeDrafts bool) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter, f.lastIncludeDrafts = filter, includeDrafts

	out := []*models.Post{}
	for _, p := range f.items {
		if !includeDrafts && !p.IsPublished {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(filter.Category)) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePostsRepo) ListBookmarked(ctx context.Context, userID string) ([]*models.Post, error) {
	out := []*models.Post{}
	for _, id := range f.bookmarked[userID] {
		if p, err := f.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostsRepo) Categories(ctx context.Context) ([]string, error) {
	return []string{"go", "life"}, f.err
}

func (f *fakePostsRepo) Tags(ctx context.Context) ([]string, error) {
	return []string{"web"}, f.err
}

func (f *fakePostsRepo) Totals(ctx context.Context, authorID string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n, views int64
	for _, p := range f.items {
		if p.AuthorID == authorID {
			n++
			views += p.Views
		}
	}
	return n, views, f.err
}

func (f *fakePostsRepo) ListStats(ctx context.Context, authorID string, order postsrepo.StatOrder, limit int) ([]models.PostStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PostStat{}
	for _, p := range f.items {
		if p.AuthorID == authorID {
			out = append(out, models.PostStat{ID: p.ID, Title: p.Title, Views: p.Views, IsPublished: p.IsPublished, CreatedAt: p.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == postsrepo.ByViews {
			return out[i].Views > out[j].Views
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- comments ---

type fakeCommentsRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Comment
	nextID int
}

func (f *fakeCommentsRepo) add(c models.Comment) *models.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if c.ID == "" {
		c.ID = fmt.Sprintf("c-%d", f.nextID)
	}
	c.Author = &models.Author{ID: c.AuthorID}
	f.items[c.ID] = &c
	return &c
}

func (f *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	return f.add(*c), nil
}

func (f *fakeCommentsRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentsRepo) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range f.items {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCommentsRepo) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	f.mu.Lock()
	c, ok := f.items[id]
	if ok {
		c.Content = content
		c.IsEdited = true
	}
	f.mu.Unlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.GetByID(ctx, id)
}

func (f *fakeCommentsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCommentsRepo) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.items {
		if c.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// --- bookmarks ---

type fakeBookmarksRepo struct {
	mu    sync.Mutex
	items map[string]map[string]bool
}

func (f *fakeBookmarksRepo) Add(ctx context.Context, userID, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[userID] == nil {
		f.items[userID] = map[string]bool{}
	}
	f.items[userID][postID] = true
	return nil
}

func (f *fakeBookmarksRepo) Remove(ctx context.Context, userID, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items[userID], postID)
	return nil
}

func (f *fakeBookmarksRepo) PostIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for id := range f.items[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeBookmarksRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items[userID])), nil
}

// --- auth collaborators ---

type fakeHasher struct {
	mu           sync.Mutex
	dummyCompare int
}

func (h *fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h *fakeHasher) Compare(hash, password string) bool { return hash == "hashed:"+password }

func (h *fakeHasher) CompareDummy(string) {
	h.mu.Lock()
	h.dummyCompare++
	h.mu.Unlock()
}

type fakeGoogle struct {
	assertion *identity.Assertion
	err       error
}

func (g *fakeGoogle) Verify(ctx context.Context, credential string) (*identity.Assertion, error) {
	if g.err != nil {
		return nil, g.err
	}
	a := *g.assertion
	return &a, nil
}
