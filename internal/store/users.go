package store

import (
	"context"
	"fmt"
)

// UserInput carries the writable user fields. PasswordHash is already
// bcrypt-hashed by the caller.
type UserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Department   string
	Active       bool
}

// ListUsers returns all users without their password hashes.
func (s *Store) ListUsers(ctx context.Context) ([]map[string]any, error) {
	rows, err := QueryRows(ctx, s.DB,
		`SELECT id, email, name, department, active, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	NormalizeBooleans(rows, []string{"active"})
	return rows, nil
}

// GetUser returns one user row, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (map[string]any, error) {
	row, err := QueryRow(ctx, s.DB, s.bind(
		`SELECT id, email, name, department, active, created_at FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	NormalizeBooleans([]map[string]any{row}, []string{"active"})
	return row, nil
}

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, in UserInput) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.bind(
		`INSERT INTO users (email, name, password_hash, department, active)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		in.Email, in.Name, in.PasswordHash, nullIfEmpty(in.Department), in.Active,
	).Scan(&id)
	if err != nil {
		return 0, s.Dialect.MapError(err)
	}
	return id, nil
}

// UpdateUser updates profile fields. The password hash changes only when a
// non-empty one is supplied.
func (s *Store) UpdateUser(ctx context.Context, id int64, in UserInput) error {
	query := `UPDATE users SET email = ?, name = ?, department = ?, active = ?, updated_at = ` +
		s.Dialect.NowExpr() + ` WHERE id = ?`
	args := []any{in.Email, in.Name, nullIfEmpty(in.Department), in.Active, id}
	if in.PasswordHash != "" {
		query = `UPDATE users SET email = ?, name = ?, password_hash = ?, department = ?, active = ?, updated_at = ` +
			s.Dialect.NowExpr() + ` WHERE id = ?`
		args = []any{in.Email, in.Name, in.PasswordHash, nullIfEmpty(in.Department), in.Active, id}
	}

	n, err := Exec(ctx, s.DB, s.bind(query), args...)
	if err != nil {
		return s.Dialect.MapError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user; memberships cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	n, err := Exec(ctx, s.DB, s.bind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserRoles replaces a user's role memberships.
func (s *Store) SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := Exec(ctx, tx, s.bind(`DELETE FROM user_roles WHERE user_id = ?`), userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := Exec(ctx, tx, s.bind(
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`), userID, roleID); err != nil {
			return s.Dialect.MapError(err)
		}
	}
	return tx.Commit()
}

// SetUserPermissions replaces a user's direct permission grants.
func (s *Store) SetUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := Exec(ctx, tx, s.bind(`DELETE FROM user_permissions WHERE user_id = ?`), userID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		if _, err := Exec(ctx, tx, s.bind(
			`INSERT INTO user_permissions (user_id, permission_id) VALUES (?, ?)`), userID, permID); err != nil {
			return s.Dialect.MapError(err)
		}
	}
	return tx.Commit()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
