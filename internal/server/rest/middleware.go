package rest

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/auth"
)

const localUserID = "userID"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	UserIDFromToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token before the
// handler runs. Accepted requests carry the user id in the fiber locals and
// in the user context.
func RequireAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(common.AuthorizationHeaderName))
		if header == "" {
			return errNoToken
		}

		token, ok := bearerToken(header)
		if !ok {
			return errInvalidToken
		}

		userID, err := tokens.UserIDFromToken(token)
		if err != nil {
			return errInvalidToken
		}

		c.Locals(localUserID, userID)
		c.SetUserContext(auth.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme := common.BearerScheme
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}

// currentUserID returns the id stored by RequireAuth.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
