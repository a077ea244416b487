package store

import (
	"context"
	"encoding/json"
	"fmt"

	"admin-backend/internal/rbac"
)

// PermissionInput is the payload for creating a permission row.
type PermissionInput struct {
	Resource   string
	Action     string
	Conditions rbac.Conditions
}

// ListPermissions returns all permission rows with decoded conditions.
func (s *Store) ListPermissions(ctx context.Context) ([]map[string]any, error) {
	rows, err := QueryRows(ctx, s.DB,
		`SELECT id, resource, action, conditions, created_at
		 FROM permissions ORDER BY resource, action`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	for _, row := range rows {
		if conds := scanConditions(row["conditions"]); conds != nil {
			row["conditions"] = conds
		} else {
			row["conditions"] = nil
		}
	}
	return rows, nil
}

// CreatePermission inserts a permission row and returns its id. Conditions
// are stored as JSON so both dialects can round-trip them.
func (s *Store) CreatePermission(ctx context.Context, in PermissionInput) (int64, error) {
	var conditions any
	if len(in.Conditions) > 0 {
		buf, err := json.Marshal(in.Conditions)
		if err != nil {
			return 0, fmt.Errorf("encode conditions: %w", err)
		}
		conditions = string(buf)
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, s.bind(
		`INSERT INTO permissions (resource, action, conditions) VALUES (?, ?, ?) RETURNING id`),
		in.Resource, in.Action, conditions,
	).Scan(&id)
	if err != nil {
		return 0, s.Dialect.MapError(err)
	}
	return id, nil
}

// DeletePermission removes a permission row; role and user grants cascade.
func (s *Store) DeletePermission(ctx context.Context, id int64) error {
	n, err := Exec(ctx, s.DB, s.bind(`DELETE FROM permissions WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
