package rest

import "github.com/gofiber/fiber/v2"

type presignRequest struct {
	ContentType string `json:"contentType"`
}

func (h *handlers) presignUpload(c *fiber.Ctx) error {
	var req presignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	target, err := h.Media.PresignUpload(c.UserContext(), currentUserID(c), req.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(uploadResponse{Key: target.Key, URL: target.URL})
}
