package rest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPosts_Filters(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodGet, "/api/posts?category=Tech&tags=go,web&author="+aliceID+"&limit=5", "", "")

	require.Equal(t, http.StatusOK, status)
	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	assert.Len(t, posts, 1)

	f := env.posts.lastFilter
	assert.Equal(t, "Tech", f.Category)
	assert.Equal(t, []string{"go", "web"}, f.Tags)
	assert.Equal(t, aliceID, f.AuthorID)
	assert.Equal(t, 5, f.Limit)
}

func TestListPosts_MalformedAuthor(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodGet, "/api/posts?author=nope", "", "")

	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["posts"])
}

func TestGetPost(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodGet, "/api/posts/"+postID, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello", body["title"])
	assert.EqualValues(t, 1, body["views"])

	status, body = env.do(t, http.MethodGet, "/api/posts/not-a-uuid", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", body["message"])
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodPost, "/api/posts", `{"title":"New","content":"words"}`, env.token(bobID))
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Post created successfully", body["message"])
	post := body["post"].(map[string]any)
	assert.Equal(t, "New", post["title"])
	assert.Equal(t, []any{}, post["tags"])

	status, _ = env.do(t, http.MethodPost, "/api/posts", `{"title":"New"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(t, http.MethodPost, "/api/posts", `{"content":"x"}`, env.token(bobID))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title is required", body["message"])
}

func TestUpdatePost_Ownership(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodPut, "/api/posts/"+postID, `{"title":"Hijacked"}`, env.token(bobID))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to update this post", body["message"])
	assert.Equal(t, "Hello", env.posts.posts[postID].Title)

	status, body = env.do(t, http.MethodPut, "/api/posts/"+postID, `{"title":"Edited"}`, env.token(aliceID))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post updated successfully", body["message"])
	assert.Equal(t, "Edited", body["post"].(map[string]any)["title"])
}

func TestDeletePost_Ownership(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodDelete, "/api/posts/"+postID, "", env.token(bobID))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to delete this post", body["message"])
	assert.Empty(t, env.posts.deleted)

	status, body = env.do(t, http.MethodDelete, "/api/posts/"+postID, "", env.token(aliceID))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post deleted successfully", body["message"])
	assert.Equal(t, []string{postID}, env.posts.deleted)
}

func TestUserAndOwnPosts(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodGet, "/api/posts/user/"+aliceID, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["_"], 1)

	status, body = env.do(t, http.MethodGet, "/api/posts/user/garbage", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["_"])

	status, body = env.do(t, http.MethodGet, "/api/posts/my/posts", "", env.token(bobID))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["_"])

	status, _ = env.do(t, http.MethodGet, "/api/posts/my/posts", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMetaRoutes(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, http.MethodGet, "/api/posts/meta/categories", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"go", "web"}, body["_"])

	status, body = env.do(t, http.MethodGet, "/api/posts/meta/tags", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["_"])
}

func TestBookmarks(t *testing.T) {
	env := newTestEnv()
	tok := env.token(bobID)

	status, body := env.do(t, http.MethodPost, "/api/posts/"+postID+"/bookmark", "", tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post bookmarked successfully", body["message"])
	assert.Equal(t, true, body["bookmarked"])
	assert.True(t, env.bookmarks.added[bobID+"/"+postID])

	status, body = env.do(t, http.MethodPost, "/api/posts/"+commentID+"/bookmark", "", tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", body["message"])

	status, body = env.do(t, http.MethodDelete, "/api/posts/"+postID+"/bookmark", "", tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["bookmarked"])
	assert.Empty(t, env.bookmarks.added)

	status, body = env.do(t, http.MethodGet, "/api/posts/bookmarks/user", "", tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["_"])
}

func TestValidUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{postID, true},
		{"33333333-3333-4333-8333-33333333333A", true},
		{"urn:uuid:" + postID, false},
		{"{" + postID + "}", false},
		{"33333333333343338333333333333333", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validUUID(tt.in), tt.in)
	}
}

func TestGetPost_NonCanonicalIDIsNotFound(t *testing.T) {
	env := newTestEnv()

	for _, id := range []string{"urn:uuid:" + postID, "{" + postID + "}"} {
		status, body := env.do(t, http.MethodGet, "/api/posts/"+url.PathEscape(id), "", "")
		assert.Equal(t, http.StatusNotFound, status, id)
		assert.Equal(t, "Post not found", body["message"], id)
	}
}
