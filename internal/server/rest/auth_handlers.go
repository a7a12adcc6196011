package rest

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/services"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// googleRequest accepts the Google Identity Services field name and the
// older "token" one.
type googleRequest struct {
	Credential string `json:"credential"`
	Token      string `json:"token"`
}

type profileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
}

func (h *handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.Users.Register(c.UserContext(), services.RegisterInput(req))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{
		Message: "User created successfully",
		Token:   res.Token,
		User:    toUser(res.User),
	})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.Users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(authResponse{Message: "Login successful", Token: res.Token, User: toUser(res.User)})
}

func (h *handlers) googleLogin(c *fiber.Ctx) error {
	var req googleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		credential = strings.TrimSpace(req.Token)
	}
	if credential == "" {
		return common.Detail(common.ErrorValidation, "No token provided")
	}

	res, err := h.Users.LoginWithGoogle(c.UserContext(), credential)
	if err != nil {
		return err
	}

	return c.JSON(authResponse{Message: "Google login successful", Token: res.Token, User: toUser(res.User)})
}

func (h *handlers) me(c *fiber.Ctx) error {
	u, err := h.Users.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(userEnvelope{User: toUser(u)})
}

func (h *handlers) updateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, err := h.Users.UpdateProfile(c.UserContext(), currentUserID(c), models.ProfileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(userEnvelope{Message: "Profile updated successfully", User: toUser(u)})
}

// profile is the dashboard view of the current user.
func (h *handlers) profile(c *fiber.Ctx) error {
	u, err := h.Users.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(toUser(u))
}
