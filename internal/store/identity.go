package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"admin-backend/internal/auth"
	"admin-backend/internal/rbac"
)

// GetUserWithPermissions loads the current identity snapshot for a user:
// profile, roles with their permissions, and direct grants. Returns
// (nil, nil) for unknown or deactivated users so callers treat both as
// anonymous.
func (s *Store) GetUserWithPermissions(ctx context.Context, userID int64) (*rbac.UserProfile, error) {
	row, err := QueryRow(ctx, s.DB, s.bind(
		`SELECT id, email, name, department, active FROM users WHERE id = ?`), userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	NormalizeBooleans([]map[string]any{row}, []string{"active"})
	if !toBool(row["active"]) {
		return nil, nil
	}

	user := &rbac.UserProfile{
		ID:    toInt64(row["id"]),
		Email: toString(row["email"]),
		Name:  toString(row["name"]),
	}
	if dept := row["department"]; dept != nil && toString(dept) != "" {
		user.Metadata = map[string]any{"department": toString(dept)}
	}

	roles, err := s.loadRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	direct, err := s.loadDirectGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Permissions = direct

	return user, nil
}

// GetUserByEmail returns login credentials, or (nil, nil) when no such user
// exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	row, err := QueryRow(ctx, s.DB, s.bind(
		`SELECT id, email, password_hash, active FROM users WHERE email = ?`), email)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	NormalizeBooleans([]map[string]any{row}, []string{"active"})

	return &auth.Credentials{
		ID:           toInt64(row["id"]),
		Email:        toString(row["email"]),
		PasswordHash: toString(row["password_hash"]),
		Active:       toBool(row["active"]),
	}, nil
}

func (s *Store) loadRoles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	roleRows, err := QueryRows(ctx, s.DB, s.bind(
		`SELECT r.id, r.name
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("load roles for user %d: %w", userID, err)
	}
	if len(roleRows) == 0 {
		return nil, nil
	}

	permRows, err := QueryRows(ctx, s.DB, s.bind(
		`SELECT rp.role_id, p.resource, p.action, p.conditions
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = ?
		 ORDER BY rp.role_id, p.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("load role permissions for user %d: %w", userID, err)
	}

	permsByRole := make(map[int64][]rbac.Permission)
	for _, row := range permRows {
		roleID := toInt64(row["role_id"])
		permsByRole[roleID] = append(permsByRole[roleID], rbac.Permission{
			Resource:   toString(row["resource"]),
			Actions:    []string{toString(row["action"])},
			Conditions: scanConditions(row["conditions"]),
		})
	}

	roles := make([]rbac.Role, 0, len(roleRows))
	for _, row := range roleRows {
		id := toInt64(row["id"])
		roles = append(roles, rbac.Role{
			ID:          id,
			Name:        toString(row["name"]),
			Permissions: permsByRole[id],
		})
	}
	return roles, nil
}

func (s *Store) loadDirectGrants(ctx context.Context, userID int64) ([]rbac.Grant, error) {
	rows, err := QueryRows(ctx, s.DB, s.bind(
		`SELECT p.resource, p.action, p.conditions
		 FROM user_permissions up
		 JOIN permissions p ON p.id = up.permission_id
		 WHERE up.user_id = ?
		 ORDER BY p.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("load direct grants for user %d: %w", userID, err)
	}

	grants := make([]rbac.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, rbac.Grant{
			Resource:   toString(row["resource"]),
			Action:     toString(row["action"]),
			Conditions: scanConditions(row["conditions"]),
		})
	}
	if len(grants) == 0 {
		return nil, nil
	}
	return grants, nil
}

// scanConditions decodes a JSON conditions column; null or malformed values
// mean an unconditional permission.
func scanConditions(v any) rbac.Conditions {
	if v == nil {
		return nil
	}
	var raw []byte
	switch val := v.(type) {
	case []byte:
		raw = val
	case string:
		raw = []byte(val)
	default:
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var conditions rbac.Conditions
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil
	}
	if len(conditions) == 0 {
		return nil
	}
	return conditions
}

// interface checks
var _ auth.IdentityStore = (*Store)(nil)
var _ auth.CredentialStore = (*Store)(nil)
