package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/mindbloging/mindbloging/internal/server/config"
)

func registerRoutes(app *fiber.App, cfg *config.Config, h *handlers) {
	requireAuth := RequireAuth(h.Tokens)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(messageResponse{Message: "MindBloging API is running!"})
	})

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	signIn := signInLimiter(cfg.LoginRateLimit)
	authGroup.Post("/register", signIn, h.register)
	authGroup.Post("/login", signIn, h.login)
	authGroup.Post("/google", signIn, h.googleLogin)
	authGroup.Get("/me", requireAuth, h.me)
	authGroup.Put("/profile", requireAuth, h.updateProfile)

	posts := api.Group("/posts")
	posts.Get("/", h.listPosts)
	posts.Get("/meta/categories", h.categories)
	posts.Get("/meta/tags", h.tags)
	posts.Get("/bookmarks/user", requireAuth, h.listBookmarks)
	posts.Get("/my/posts", requireAuth, h.myPosts)
	posts.Get("/user/:userId", h.userPosts)
	posts.Get("/:id", h.getPost)
	posts.Post("/", requireAuth, h.createPost)
	posts.Put("/:id", requireAuth, h.updatePost)
	posts.Delete("/:id", requireAuth, h.deletePost)
	posts.Post("/:id/bookmark", requireAuth, h.addBookmark)
	posts.Delete("/:id/bookmark", requireAuth, h.removeBookmark)

	comments := api.Group("/comments")
	comments.Get("/post/:postId", h.listComments)
	comments.Post("/", requireAuth, h.createComment)
	comments.Put("/:id", requireAuth, h.updateComment)
	comments.Delete("/:id", requireAuth, h.deleteComment)

	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/stats", h.stats)
	dashboard.Get("/profile", h.profile)
	dashboard.Put("/profile", h.updateProfile)

	media := api.Group("/media", requireAuth)
	media.Post("/presign", h.presignUpload)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}

// signInLimiter throttles credential endpoints per client IP. A non-positive
// limit disables it. The routes share one limiter so their budget is common.
func signInLimiter(limit int) fiber.Handler {
	if limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(messageResponse{Message: msgTooManyRequests})
		},
	})
}
