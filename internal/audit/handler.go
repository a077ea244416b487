package audit

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/auth"
	"admin-backend/internal/rbac"
	"admin-backend/internal/store"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterAuditRoutes mounts the audit listing behind the session guard.
func RegisterAuditRoutes(app *fiber.App, h *Handler, guard *auth.Guard) {
	app.Get("/api/admin/audit",
		guard.Authenticate(),
		guard.RequirePermissions(rbac.PermissionCheck{Resource: "audit", Action: "read"}),
		h.List)
}

// List handles GET /api/admin/audit with optional userId, action and path
// filters and a capped limit.
func (h *Handler) List(c *fiber.Ctx) error {
	var conditions []string
	var args []any

	if v := c.QueryInt("userId"); v > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, int64(v))
	}
	if v := c.Query("action"); v != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, strings.ToUpper(v))
	}
	if v := c.Query("path"); v != "" {
		conditions = append(conditions, "path = ?")
		args = append(args, v)
	}

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	sqlStr := `SELECT id, user_id, action, path, status, metadata, created_at FROM audit_logs`
	if len(conditions) > 0 {
		sqlStr += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlStr += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", limit)

	rows, err := store.QueryRows(c.Context(), h.store.DB, h.store.Dialect.Rebind(sqlStr), args...)
	if err != nil {
		return fmt.Errorf("list audit entries: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}
