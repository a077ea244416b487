package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
	"admin-backend/internal/rbac"
)

type fakeCredentialStore struct {
	byEmail map[string]*Credentials
}

func (f *fakeCredentialStore) GetUserByEmail(_ context.Context, email string) (*Credentials, error) {
	return f.byEmail[email], nil
}

func authTestApp(t *testing.T) (*fiber.App, *SessionManager) {
	t.Helper()

	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	identity := &fakeIdentityStore{users: map[int64]*rbac.UserProfile{
		42: {
			ID: 42, Email: "tester@example.com", Name: "Tester",
			Roles: []rbac.Role{
				{ID: 3, Name: "editor", Permissions: []rbac.Permission{
					{Resource: "articles", Actions: []string{"read", "update"}},
				}},
			},
		},
	}}
	creds := &fakeCredentialStore{byEmail: map[string]*Credentials{
		"tester@example.com":   {ID: 42, Email: "tester@example.com", PasswordHash: hash, Active: true},
		"disabled@example.com": {ID: 43, Email: "disabled@example.com", PasswordHash: hash, Active: false},
	}}

	sessions := newTestSessionManager(identity)
	guard := NewGuard(sessions, false)
	h := NewHandler(sessions, creds, identity, false)

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	RegisterRoutes(app, h, guard)
	return app, sessions
}

func postJSON(t *testing.T, app *fiber.App, path, body string, cookies map[string]string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestLogin_Success(t *testing.T) {
	app, sessions := authTestApp(t)

	resp := postJSON(t, app, "/api/auth/login",
		`{"email":"tester@example.com","password":"hunter22"}`, nil)
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Data struct {
			User   rbac.UserProfile `json:"user"`
			Tokens struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"tokens"`
		} `json:"data"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.User.ID != 42 {
		t.Fatalf("expected user 42, got %d", payload.Data.User.ID)
	}
	if claims, err := sessions.Tokens().VerifyAccessToken(payload.Data.Tokens.AccessToken); err != nil || claims.UserID != 42 {
		t.Fatalf("returned access token must verify: %v", err)
	}

	access := respCookie(resp, AccessTokenCookie)
	if access == nil || access.Value == "" {
		t.Fatal("login must set the access cookie")
	}
	if !access.HttpOnly || access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("access cookie attributes wrong: %+v", access)
	}
	if access.Secure {
		t.Fatal("secure flag must be off outside production")
	}
	if access.MaxAge != int(DefaultAccessTokenTTL.Seconds()) {
		t.Fatalf("expected access maxAge %d, got %d", int(DefaultAccessTokenTTL.Seconds()), access.MaxAge)
	}
	refresh := respCookie(resp, RefreshTokenCookie)
	if refresh == nil || refresh.MaxAge != int(DefaultRefreshTokenTTL.Seconds()) {
		t.Fatalf("expected refresh maxAge %d, got %+v", int(DefaultRefreshTokenTTL.Seconds()), refresh)
	}
}

func TestLogin_Failures(t *testing.T) {
	app, _ := authTestApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"tester@example.com","password":"nope"}`},
		{"unknown email", `{"email":"ghost@example.com","password":"hunter22"}`},
		{"disabled account", `{"email":"disabled@example.com","password":"hunter22"}`},
		{"missing fields", `{"email":"","password":""}`},
	}
	for _, tc := range cases {
		resp := postJSON(t, app, "/api/auth/login", tc.body, nil)
		if resp.StatusCode != 401 {
			t.Fatalf("%s: expected 401, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestRefreshEndpoint_RotatesPair(t *testing.T) {
	app, sessions := authTestApp(t)

	refresh, _ := sessions.Tokens().SignRefreshToken(42)
	resp := postJSON(t, app, "/api/auth/refresh", "", map[string]string{
		RefreshTokenCookie: refresh,
	})
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	access := respCookie(resp, AccessTokenCookie)
	if access == nil || access.Value == "" {
		t.Fatal("refresh must set a new access cookie")
	}
	if claims, err := sessions.Tokens().VerifyAccessToken(access.Value); err != nil || claims.UserID != 42 {
		t.Fatalf("new access token must verify to user 42: %v", err)
	}
	newRefresh := respCookie(resp, RefreshTokenCookie)
	if newRefresh == nil || newRefresh.Value == refresh {
		t.Fatal("refresh token must rotate")
	}
}

func TestRefreshEndpoint_InvalidToken(t *testing.T) {
	app, _ := authTestApp(t)

	resp := postJSON(t, app, "/api/auth/refresh", "", map[string]string{
		RefreshTokenCookie: "garbage",
	})
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var errResp api.ErrorResponse
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if errResp.Error.Code != "REFRESH_TOKEN_INVALID" {
		t.Fatalf("expected REFRESH_TOKEN_INVALID, got %s", errResp.Error.Code)
	}

	if resp := postJSON(t, app, "/api/auth/refresh", "", nil); resp.StatusCode != 401 {
		t.Fatalf("expected 401 without refresh cookie, got %d", resp.StatusCode)
	}
}

func TestLogout_ClearsCookies(t *testing.T) {
	app, _ := authTestApp(t)

	resp := postJSON(t, app, "/api/auth/logout", "", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cookie := respCookie(resp, name)
		if cookie == nil || cookie.Value != "" || cookie.Expires.After(time.Now()) {
			t.Fatalf("expected %s cleared, got %+v", name, cookie)
		}
	}
}

func TestMe_ReturnsEffectivePermissions(t *testing.T) {
	app, sessions := authTestApp(t)

	token, _ := sessions.Tokens().SignAccessToken(42)
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Permissions []rbac.Permission `json:"permissions"`
		} `json:"data"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Data.Permissions) != 1 || payload.Data.Permissions[0].Resource != "articles" {
		t.Fatalf("expected resolved articles permissions, got %+v", payload.Data.Permissions)
	}

	// Unauthenticated access is rejected.
	req2, _ := http.NewRequest("GET", "/api/auth/me", nil)
	resp2, _ := app.Test(req2, -1)
	if resp2.StatusCode != 401 {
		t.Fatalf("expected 401 without cookie, got %d", resp2.StatusCode)
	}
}

func TestNavigation_ListsAccessibleRoutes(t *testing.T) {
	app, sessions := authTestApp(t)

	token, _ := sessions.Tokens().SignAccessToken(42)
	req, _ := http.NewRequest("GET", "/api/auth/navigation", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Routes []string `json:"routes"`
		} `json:"data"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	// Editor has no mapped route grants; the list is empty but present.
	if payload.Data.Routes == nil {
		t.Fatal("routes must be an array, not null")
	}
}
