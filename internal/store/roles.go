package store

import (
	"context"
	"fmt"
)

// ListRoles returns all roles with their permission rows attached.
func (s *Store) ListRoles(ctx context.Context) ([]map[string]any, error) {
	roles, err := QueryRows(ctx, s.DB,
		`SELECT id, name, description, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	permRows, err := QueryRows(ctx, s.DB,
		`SELECT rp.role_id, p.id, p.resource, p.action
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 ORDER BY rp.role_id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	permsByRole := make(map[int64][]map[string]any)
	for _, row := range permRows {
		roleID := toInt64(row["role_id"])
		permsByRole[roleID] = append(permsByRole[roleID], map[string]any{
			"id":       row["id"],
			"resource": row["resource"],
			"action":   row["action"],
		})
	}
	for _, role := range roles {
		perms := permsByRole[toInt64(role["id"])]
		if perms == nil {
			perms = []map[string]any{}
		}
		role["permissions"] = perms
	}
	return roles, nil
}

// GetRole returns one role with its permissions, or ErrNotFound.
func (s *Store) GetRole(ctx context.Context, id int64) (map[string]any, error) {
	role, err := QueryRow(ctx, s.DB, s.bind(
		`SELECT id, name, description, created_at FROM roles WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}

	perms, err := QueryRows(ctx, s.DB, s.bind(
		`SELECT p.id, p.resource, p.action
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = ?
		 ORDER BY p.id`), id)
	if err != nil {
		return nil, fmt.Errorf("load role permissions: %w", err)
	}
	if perms == nil {
		perms = []map[string]any{}
	}
	role["permissions"] = perms
	return role, nil
}

// CreateRole inserts a role and returns its id.
func (s *Store) CreateRole(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.bind(
		`INSERT INTO roles (name, description) VALUES (?, ?) RETURNING id`),
		name, description,
	).Scan(&id)
	if err != nil {
		return 0, s.Dialect.MapError(err)
	}
	return id, nil
}

// UpdateRole renames a role.
func (s *Store) UpdateRole(ctx context.Context, id int64, name, description string) error {
	n, err := Exec(ctx, s.DB, s.bind(
		`UPDATE roles SET name = ?, description = ?, updated_at = `+s.Dialect.NowExpr()+` WHERE id = ?`),
		name, description, id)
	if err != nil {
		return s.Dialect.MapError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRole removes a role; memberships and grants cascade.
func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	n, err := Exec(ctx, s.DB, s.bind(`DELETE FROM roles WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRolePermissions replaces the permissions granted by a role.
func (s *Store) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := Exec(ctx, tx, s.bind(`DELETE FROM role_permissions WHERE role_id = ?`), roleID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		if _, err := Exec(ctx, tx, s.bind(
			`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`), roleID, permID); err != nil {
			return s.Dialect.MapError(err)
		}
	}
	return tx.Commit()
}
