package middleware

import (
	"net/url"
	"strings"

	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// SessionCookie holds the session token for browser clients.
	SessionCookie = "session"
	LoginPath     = "/login"

	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalUserName = "user_name"
)

// RequireAuth admits requests carrying a valid session and stores the user in
// Locals. API clients get 401; browsers are redirected to the login page.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, bearer, ok := extractToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}
		if token == "" {
			return deny(c, bearer, "Missing authorization token")
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if !bearer {
				c.ClearCookie(SessionCookie)
			}
			return deny(c, bearer, err.Error())
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUsername, user.Username)
		c.Locals(LocalUserName, user.FullName)

		return c.Next()
	}
}

// extractToken prefers the Authorization header over the session cookie.
func extractToken(c *fiber.Ctx) (token string, bearer bool, ok bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", true, false
		}
		return parts[1], true, true
	}
	return c.Cookies(SessionCookie), false, true
}

func deny(c *fiber.Ctx, bearer bool, msg string) error {
	if bearer || wantsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg, "login": LoginPath})
	}
	return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
}

func wantsJSON(c *fiber.Ctx) bool {
	if strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return true
	}
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMEApplicationJSON) && !strings.Contains(accept, fiber.MIMETextHTML)
}

// CurrentActor reads the identity stored by RequireAuth.
func CurrentActor(c *fiber.Ctx) service.Actor {
	var actor service.Actor
	if id, ok := c.Locals(LocalUserID).(string); ok {
		actor.ID, _ = uuid.Parse(id)
	}
	actor.Username, _ = c.Locals(LocalUsername).(string)
	actor.Name, _ = c.Locals(LocalUserName).(string)
	return actor
}
