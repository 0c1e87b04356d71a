package handler

import (
	"strings"
	"time"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService  service.AuthService
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// LoginPage tells clients where to send credentials.
// GET /login
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Please log in",
		"action":  middleware.LoginPath,
		"next":    safeNext(c.Query("next")),
	})
}

// Login handles user authentication
// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	echo := fiber.Map{"username": req.Username}

	if req.Username == "" || req.Password == "" {
		return withForm(apperr.ErrInvalidCredentials, echo)
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return withForm(err, echo)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    response.Token,
		Path:     "/",
		Expires:  response.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if isFormPost(c) {
		return c.Redirect(safeNext(req.Next), fiber.StatusSeeOther)
	}
	return c.JSON(response)
}

// Logout invalidates every token issued to the user.
// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if err := h.authService.Logout(c.UserContext(), actor.ID); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if isFormPost(c) {
		return c.Redirect(middleware.LoginPath, fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ChangePassword handles password change for the logged-in user
// POST /password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	actor := middleware.CurrentActor(c)
	if err := h.authService.ChangePassword(c.UserContext(), actor.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// POST /heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if err := h.authService.Heartbeat(c.UserContext(), actor.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

func isFormPost(c *fiber.Ctx) bool {
	ct := c.Get(fiber.HeaderContentType)
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
