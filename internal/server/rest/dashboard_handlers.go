package rest

import "github.com/gofiber/fiber/v2"

func (h *handlers) stats(c *fiber.Ctx) error {
	d, err := h.Dashboard.Stats(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(toStats(d))
}
