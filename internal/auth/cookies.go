package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Fixed cookie names, shared with any client-side logout action.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetSessionCookies writes both tokens as httpOnly lax cookies. maxAge
// follows the token TTLs; secure is on in production only.
func SetSessionCookies(c *fiber.Ctx, access, refresh string, accessTTL, refreshTTL time.Duration, secure bool) {
	setTokenCookie(c, AccessTokenCookie, access, accessTTL, secure)
	setTokenCookie(c, RefreshTokenCookie, refresh, refreshTTL, secure)
}

// ClearSessionCookies expires both cookies so the client re-authenticates
// cleanly after a terminal verification failure.
func ClearSessionCookies(c *fiber.Ctx) {
	expireTokenCookie(c, AccessTokenCookie)
	expireTokenCookie(c, RefreshTokenCookie)
}

func setTokenCookie(c *fiber.Ctx, name, value string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func expireTokenCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
