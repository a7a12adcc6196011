package rest

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/services"
)

const msgPostNotFound = "Post not found"

type postRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
	IsPublished   *bool    `json:"isPublished"`
}

type postUpdateRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	Category      *string  `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
	IsPublished   *bool    `json:"isPublished"`
}

func (h *handlers) listPosts(c *fiber.Ctx) error {
	f := models.PostFilter{
		Category: c.Query("category"),
		AuthorID: c.Query("author"),
		Limit:    c.QueryInt("limit", services.DefaultPostLimit),
	}
	if tags := c.Query("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}
	if f.AuthorID != "" && !validUUID(f.AuthorID) {
		return c.JSON(postListResponse{Posts: []postResponse{}})
	}

	posts, err := h.Posts.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(postListResponse{Posts: toPosts(posts)})
}

func (h *handlers) getPost(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgPostNotFound)
	if err != nil {
		return err
	}

	p, err := h.Posts.View(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toPost(p))
}

func (h *handlers) createPost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Posts.Create(c.UserContext(), currentUserID(c), services.PostInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(postEnvelope{Message: "Post created successfully", Post: toPost(p)})
}

func (h *handlers) updatePost(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgPostNotFound)
	if err != nil {
		return err
	}

	var req postUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Posts.Update(c.UserContext(), currentUserID(c), id, models.PostUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(postEnvelope{Message: "Post updated successfully", Post: toPost(p)})
}

func (h *handlers) deletePost(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgPostNotFound)
	if err != nil {
		return err
	}

	if err := h.Posts.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "Post deleted successfully"})
}

func (h *handlers) userPosts(c *fiber.Ctx) error {
	authorID := c.Params("userId")
	if !validUUID(authorID) {
		return c.JSON([]postResponse{})
	}

	posts, err := h.Posts.ListByAuthor(c.UserContext(), authorID)
	if err != nil {
		return err
	}
	return c.JSON(toPosts(posts))
}

func (h *handlers) myPosts(c *fiber.Ctx) error {
	posts, err := h.Posts.ListOwn(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(toPosts(posts))
}

func (h *handlers) categories(c *fiber.Ctx) error {
	cats, err := h.Posts.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

func (h *handlers) tags(c *fiber.Ctx) error {
	tags, err := h.Posts.Tags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

func (h *handlers) addBookmark(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgPostNotFound)
	if err != nil {
		return err
	}

	if err := h.Bookmarks.Add(c.UserContext(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(bookmarkResponse{Message: "Post bookmarked successfully", Bookmarked: true})
}

func (h *handlers) removeBookmark(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgPostNotFound)
	if err != nil {
		return err
	}

	if err := h.Bookmarks.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(bookmarkResponse{Message: "Bookmark removed successfully", Bookmarked: false})
}

func (h *handlers) listBookmarks(c *fiber.Ctx) error {
	posts, err := h.Bookmarks.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(toPosts(posts))
}

// validUUID accepts only the canonical hyphenated form; uuid.Parse also
// takes urn and brace forms that the database rejects.
func validUUID(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.String() == strings.ToLower(s)
}
