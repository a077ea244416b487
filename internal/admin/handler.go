package admin

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
	"admin-backend/internal/auth"
	"admin-backend/internal/rbac"
	"admin-backend/internal/store"
)

type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterAdminRoutes mounts the management API. Every route requires an
// authenticated session and a resource-scoped permission per HTTP verb.
// Superadmins skip the permission checks inside the guard.
func RegisterAdminRoutes(app *fiber.App, h *Handler, guard *auth.Guard) {
	admin := app.Group("/api/admin", guard.Authenticate())

	users := admin.Group("/users")
	users.Get("/", guard.RequirePermissions(check("users", "read")), h.ListUsers)
	users.Get("/:id", guard.RequirePermissions(check("users", "read")), h.GetUser)
	users.Post("/", guard.RequirePermissions(check("users", "create")), h.CreateUser)
	users.Put("/:id", guard.RequirePermissions(check("users", "update")), h.UpdateUser)
	users.Delete("/:id", guard.RequirePermissions(check("users", "delete")), h.DeleteUser)
	users.Put("/:id/roles", guard.RequirePermissions(check("users", "update")), h.SetUserRoles)
	users.Put("/:id/permissions", guard.RequirePermissions(check("users", "update")), h.SetUserPermissions)

	roles := admin.Group("/roles")
	roles.Get("/", guard.RequirePermissions(check("roles", "read")), h.ListRoles)
	roles.Get("/:id", guard.RequirePermissions(check("roles", "read")), h.GetRole)
	roles.Post("/", guard.RequirePermissions(check("roles", "create")), h.CreateRole)
	roles.Put("/:id", guard.RequirePermissions(check("roles", "update")), h.UpdateRole)
	roles.Delete("/:id", guard.RequirePermissions(check("roles", "delete")), h.DeleteRole)
	roles.Put("/:id/permissions", guard.RequirePermissions(check("roles", "update")), h.SetRolePermissions)

	perms := admin.Group("/permissions")
	perms.Get("/", guard.RequirePermissions(check("roles", "read")), h.ListPermissions)
	perms.Post("/", guard.RequirePermissions(check("roles", "manage")), h.CreatePermission)
	perms.Delete("/:id", guard.RequirePermissions(check("roles", "manage")), h.DeletePermission)
}

func check(resource, action string) rbac.PermissionCheck {
	return rbac.PermissionCheck{Resource: resource, Action: action}
}

// --- User Endpoints ---

type userPayload struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Active     *bool  `json:"active"`
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	rows, err := h.store.ListUsers(c.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid user id")
	}
	row, err := h.store.GetUser(c.Context(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("User", id)
	}
	if err != nil {
		return fmt.Errorf("get user %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var payload userPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if details := validateUser(&payload, true); len(details) > 0 {
		return api.ValidationError(details)
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	id, err := h.store.CreateUser(c.Context(), store.UserInput{
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: hash,
		Department:   payload.Department,
		Active:       active,
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		return api.ConflictError("A user with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	row, err := h.store.GetUser(c.Context(), id)
	if err != nil {
		return fmt.Errorf("load created user: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": row})
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid user id")
	}
	var payload userPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if details := validateUser(&payload, false); len(details) > 0 {
		return api.ValidationError(details)
	}

	in := store.UserInput{
		Email:      payload.Email,
		Name:       payload.Name,
		Department: payload.Department,
		Active:     payload.Active == nil || *payload.Active,
	}
	if payload.Password != "" {
		hash, err := auth.HashPassword(payload.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		in.PasswordHash = hash
	}
	err = h.store.UpdateUser(c.Context(), int64(id), in)
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("User", id)
	}
	if errors.Is(err, store.ErrUniqueViolation) {
		return api.ConflictError("A user with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}

	row, err := h.store.GetUser(c.Context(), int64(id))
	if err != nil {
		return fmt.Errorf("load updated user: %w", err)
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid user id")
	}
	err = h.store.DeleteUser(c.Context(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("User", id)
	}
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

type idListPayload struct {
	RoleIDs       []int64 `json:"roleIds"`
	PermissionIDs []int64 `json:"permissionIds"`
}

func (h *Handler) SetUserRoles(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid user id")
	}
	var payload idListPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if _, err := h.store.GetUser(c.Context(), int64(id)); errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("User", id)
	} else if err != nil {
		return fmt.Errorf("get user %d: %w", id, err)
	}
	if err := h.store.SetUserRoles(c.Context(), int64(id), payload.RoleIDs); err != nil {
		return fmt.Errorf("set roles for user %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "roleIds": payload.RoleIDs}})
}

func (h *Handler) SetUserPermissions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid user id")
	}
	var payload idListPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if _, err := h.store.GetUser(c.Context(), int64(id)); errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("User", id)
	} else if err != nil {
		return fmt.Errorf("get user %d: %w", id, err)
	}
	if err := h.store.SetUserPermissions(c.Context(), int64(id), payload.PermissionIDs); err != nil {
		return fmt.Errorf("set permissions for user %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "permissionIds": payload.PermissionIDs}})
}

// --- Role Endpoints ---

type rolePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) ListRoles(c *fiber.Ctx) error {
	rows, err := h.store.ListRoles(c.Context())
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) GetRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid role id")
	}
	row, err := h.store.GetRole(c.Context(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("Role", id)
	}
	if err != nil {
		return fmt.Errorf("get role %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *Handler) CreateRole(c *fiber.Ctx) error {
	var payload rolePayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if payload.Name == "" {
		return api.ValidationError([]api.ErrorDetail{{Field: "name", Rule: "required", Message: "Role name is required"}})
	}
	id, err := h.store.CreateRole(c.Context(), payload.Name, payload.Description)
	if errors.Is(err, store.ErrUniqueViolation) {
		return api.ConflictError("A role with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	row, err := h.store.GetRole(c.Context(), id)
	if err != nil {
		return fmt.Errorf("load created role: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": row})
}

func (h *Handler) UpdateRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid role id")
	}
	var payload rolePayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if payload.Name == "" {
		return api.ValidationError([]api.ErrorDetail{{Field: "name", Rule: "required", Message: "Role name is required"}})
	}
	err = h.store.UpdateRole(c.Context(), int64(id), payload.Name, payload.Description)
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("Role", id)
	}
	if errors.Is(err, store.ErrUniqueViolation) {
		return api.ConflictError("A role with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("update role %d: %w", id, err)
	}
	row, err := h.store.GetRole(c.Context(), int64(id))
	if err != nil {
		return fmt.Errorf("load updated role: %w", err)
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *Handler) DeleteRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid role id")
	}
	if int64(id) == rbac.SuperadminRoleID {
		return api.ForbiddenError("The superadmin role cannot be deleted")
	}
	err = h.store.DeleteRole(c.Context(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("Role", id)
	}
	if err != nil {
		return fmt.Errorf("delete role %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

func (h *Handler) SetRolePermissions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid role id")
	}
	var payload idListPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	if _, err := h.store.GetRole(c.Context(), int64(id)); errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("Role", id)
	} else if err != nil {
		return fmt.Errorf("get role %d: %w", id, err)
	}
	if err := h.store.SetRolePermissions(c.Context(), int64(id), payload.PermissionIDs); err != nil {
		return fmt.Errorf("set permissions for role %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "permissionIds": payload.PermissionIDs}})
}

// --- Permission Endpoints ---

type permissionPayload struct {
	Resource   string          `json:"resource"`
	Action     string          `json:"action"`
	Conditions rbac.Conditions `json:"conditions"`
}

func (h *Handler) ListPermissions(c *fiber.Ctx) error {
	rows, err := h.store.ListPermissions(c.Context())
	if err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) CreatePermission(c *fiber.Ctx) error {
	var payload permissionPayload
	if err := c.BodyParser(&payload); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid JSON body")
	}
	var details []api.ErrorDetail
	if payload.Resource == "" {
		details = append(details, api.ErrorDetail{Field: "resource", Rule: "required", Message: "Resource is required"})
	}
	if payload.Action == "" {
		details = append(details, api.ErrorDetail{Field: "action", Rule: "required", Message: "Action is required"})
	}
	if len(details) > 0 {
		return api.ValidationError(details)
	}

	id, err := h.store.CreatePermission(c.Context(), store.PermissionInput{
		Resource:   payload.Resource,
		Action:     payload.Action,
		Conditions: payload.Conditions,
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		return api.ConflictError("This resource and action pair already exists")
	}
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":         id,
		"resource":   payload.Resource,
		"action":     payload.Action,
		"conditions": payload.Conditions,
	}})
}

func (h *Handler) DeletePermission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return api.NewAppError("INVALID_PAYLOAD", fiber.StatusBadRequest, "Invalid permission id")
	}
	err = h.store.DeletePermission(c.Context(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return api.NotFoundError("Permission", id)
	}
	if err != nil {
		return fmt.Errorf("delete permission %d: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

// --- Validation ---

func validateUser(p *userPayload, creating bool) []api.ErrorDetail {
	var details []api.ErrorDetail
	if p.Email == "" {
		details = append(details, api.ErrorDetail{Field: "email", Rule: "required", Message: "Email is required"})
	}
	if p.Name == "" {
		details = append(details, api.ErrorDetail{Field: "name", Rule: "required", Message: "Name is required"})
	}
	if creating && p.Password == "" {
		details = append(details, api.ErrorDetail{Field: "password", Rule: "required", Message: "Password is required"})
	}
	if p.Password != "" && len(p.Password) < 8 {
		details = append(details, api.ErrorDetail{Field: "password", Rule: "min", Message: "Password must be at least 8 characters"})
	}
	return details
}
