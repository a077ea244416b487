package audit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
)

// testLogger buffers without ever flushing so entries can be inspected.
func testLogger() *Logger {
	return &Logger{
		maxSize: 1000,
		done:    make(chan struct{}),
		ticker:  time.NewTicker(time.Hour),
	}
}

func auditTestApp(l *Logger) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Use("/api", l.Middleware())
	app.Get("/api/things", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": []string{}})
	})
	app.Post("/api/things", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": "ok"})
	})
	app.Post("/api/forbidden", func(c *fiber.Ctx) error {
		return api.ForbiddenError("no")
	})
	return app
}

func TestMiddleware_RecordsMutatingRequests(t *testing.T) {
	l := testLogger()
	app := auditTestApp(l)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/things", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	if len(l.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(l.entries))
	}
	entry := l.entries[0]
	if entry.Action != "POST" || entry.Path != "/api/things" || entry.Status != fiber.StatusCreated {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.UserID != 0 {
		t.Fatalf("anonymous request should record user id 0, got %d", entry.UserID)
	}
}

func TestMiddleware_SkipsReads(t *testing.T) {
	l := testLogger()
	app := auditTestApp(l)

	if _, err := app.Test(httptest.NewRequest("GET", "/api/things", nil), -1); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(l.entries) != 0 {
		t.Fatalf("reads should not be recorded, got %d entries", len(l.entries))
	}
}

func TestMiddleware_RecordsErrorStatus(t *testing.T) {
	l := testLogger()
	app := auditTestApp(l)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/forbidden", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if len(l.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(l.entries))
	}
	if l.entries[0].Status != fiber.StatusForbidden {
		t.Fatalf("expected recorded status 403, got %d", l.entries[0].Status)
	}
}
