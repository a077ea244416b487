package auth

import (
	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
	"admin-backend/internal/rbac"
)

// Guard enforces authentication and permission requirements on routes. All
// authorization failures are decided here and translated to a fixed
// status+code; nothing below this boundary returns an auth error.
type Guard struct {
	sessions *SessionManager
	secure   bool
}

func NewGuard(sessions *SessionManager, secure bool) *Guard {
	return &Guard{sessions: sessions, secure: secure}
}

// Authenticate resolves the session from the request cookies and stores the
// verified user in Locals. A missing or terminally invalid session clears
// both cookies and fails with 401. A transparent rotation sets the fresh
// token pair on the response.
func (g *Guard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(AccessTokenCookie)
		refreshToken := c.Cookies(RefreshTokenCookie)

		if accessToken == "" && refreshToken == "" {
			return api.UnauthorizedError("Unauthorized - No token")
		}

		session, err := g.sessions.ResolveSession(c.Context(), accessToken, refreshToken)
		if err != nil {
			return err
		}
		if session == nil {
			ClearSessionCookies(c)
			return api.UnauthorizedError("Unauthorized - Invalid or expired token")
		}

		if session.NeedsRefresh {
			tokens := g.sessions.Tokens()
			SetSessionCookies(c, session.AccessToken, session.RefreshToken,
				tokens.AccessTTL, tokens.RefreshTTL, g.secure)
		}

		c.Locals("user", session.User)
		return c.Next()
	}
}

// RequirePermissions allows the request only when the authenticated user
// holds every listed permission. Superadmins bypass the check entirely.
func (g *Guard) RequirePermissions(checks ...rbac.PermissionCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return api.UnauthorizedError("Unauthorized - No token")
		}
		if rbac.IsSuperadmin(user) {
			return c.Next()
		}
		if !rbac.HasAllPermissions(user, checks) {
			return api.ForbiddenError("Forbidden")
		}
		return c.Next()
	}
}

// RequireRoutePermission guards a request by its path using the route map.
// A mapped path is always enforced, even under a public prefix; public
// routes pass with authentication only; unmapped paths are denied.
func (g *Guard) RequireRoutePermission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return api.UnauthorizedError("Unauthorized - No token")
		}
		if rbac.IsSuperadmin(user) {
			return c.Next()
		}
		path := c.Path()
		perm, ok := rbac.RequiredPermission(path)
		if !ok {
			if rbac.IsPublicRoute(path) {
				return c.Next()
			}
			return api.ForbiddenError("Forbidden")
		}
		if !rbac.HasPermission(user, perm.Resource, perm.Action) {
			return api.ForbiddenError("Forbidden")
		}
		return c.Next()
	}
}

// CurrentUser extracts the verified user from a request.
func CurrentUser(c *fiber.Ctx) *rbac.UserProfile {
	user, _ := c.Locals("user").(*rbac.UserProfile)
	return user
}
