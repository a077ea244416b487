package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
	"admin-backend/internal/rbac"
)

// Credentials is the login view of a user row.
type Credentials struct {
	ID           int64
	Email        string
	PasswordHash string
	Active       bool
}

// CredentialStore looks up login credentials by email. Unknown emails return
// (nil, nil).
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*Credentials, error)
}

// Handler serves the authentication endpoints.
type Handler struct {
	sessions *SessionManager
	creds    CredentialStore
	users    IdentityStore
	secure   bool
}

func NewHandler(sessions *SessionManager, creds CredentialStore, users IdentityStore, secure bool) *Handler {
	return &Handler{sessions: sessions, creds: creds, users: users, secure: secure}
}

// Login handles POST /api/auth/login. On success both tokens are returned in
// the body and set as session cookies.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return api.UnauthorizedError("Email and password are required")
	}

	ctx := c.Context()

	creds, err := h.creds.GetUserByEmail(ctx, body.Email)
	if err != nil {
		return err
	}
	if creds == nil || !CheckPassword(body.Password, creds.PasswordHash) {
		return api.UnauthorizedError("Invalid email or password")
	}
	if !creds.Active {
		return api.UnauthorizedError("Account is disabled")
	}

	user, err := h.users.GetUserWithPermissions(ctx, creds.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return api.UserNotFoundError()
	}

	tokens := h.sessions.Tokens()
	accessToken, err := tokens.SignAccessToken(creds.ID)
	if err != nil {
		return err
	}
	refreshToken, err := tokens.SignRefreshToken(creds.ID)
	if err != nil {
		return err
	}

	SetSessionCookies(c, accessToken, refreshToken, tokens.AccessTTL, tokens.RefreshTTL, h.secure)

	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": user,
		"tokens": fiber.Map{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"expiresIn": int(tokens.AccessTTL.Seconds()),
	}})
}

// Refresh handles POST /api/auth/refresh. It rotates the pair from the
// refresh cookie alone, so it also recovers sessions whose access cookie was
// dropped by the client.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(RefreshTokenCookie)
	if refreshToken == "" {
		return api.RefreshTokenInvalidError()
	}

	session, err := h.sessions.ResolveSession(c.Context(), "", refreshToken)
	if err != nil {
		return err
	}
	if session == nil {
		ClearSessionCookies(c)
		return api.RefreshTokenInvalidError()
	}

	tokens := h.sessions.Tokens()
	SetSessionCookies(c, session.AccessToken, session.RefreshToken,
		tokens.AccessTTL, tokens.RefreshTTL, h.secure)

	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": session.User,
		"tokens": fiber.Map{
			"accessToken":  session.AccessToken,
			"refreshToken": session.RefreshToken,
		},
	}})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	ClearSessionCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me. Requires authentication.
func (h *Handler) Me(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return api.UnauthorizedError("Unauthorized - No token")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user":        user,
		"permissions": rbac.ResolveEffectivePermissions(user),
	}})
}

// Navigation handles GET /api/auth/navigation: the mapped routes this user
// may open, for menu rendering.
func (h *Handler) Navigation(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return api.UnauthorizedError("Unauthorized - No token")
	}
	routes := rbac.AccessibleRoutes(user)
	if routes == nil {
		routes = []string{}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"routes": routes}})
}

// RegisterRoutes registers the auth endpoints on the given Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler, guard *Guard) {
	grp := app.Group("/api/auth")
	grp.Post("/login", h.Login)
	grp.Post("/refresh", h.Refresh)
	grp.Post("/logout", h.Logout)
	grp.Get("/me", guard.Authenticate(), h.Me)
	grp.Get("/navigation", guard.Authenticate(), h.Navigation)
}
