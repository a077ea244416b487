package store

import (
	"context"
	"fmt"

	"admin-backend/internal/auth"
	"admin-backend/internal/rbac"
)

// seedRoles are inserted with fixed ids so the superadmin sentinel is stable.
var seedRoles = []struct {
	id          int64
	name        string
	description string
}{
	{rbac.SuperadminRoleID, "superadmin", "Full access to everything"},
	{2, "admin", "Manage users and roles"},
	{3, "editor", "Edit content"},
	{4, "viewer", "Read-only access"},
}

var crudResources = []string{"users", "roles", "customers", "contacts"}
var crudActions = []string{"create", "read", "update", "delete"}

// extraPermissions cover the non-CRUD resources the navigation map refers to.
var extraPermissions = [][2]string{
	{"settings", "read"},
	{"settings", "manage"},
	{"billing", "read"},
	{"proposals", "read"},
	{"data", "read"},
	{"reports", "read"},
	{"assistant", "use"},
	{"audit", "read"},
}

// Seed fills the system tables with the default roles, permission catalog
// and an initial superadmin user. It is idempotent: every insert tolerates
// rows already being present.
func (s *Store) Seed(ctx context.Context, adminEmail, adminPassword string) error {
	for _, role := range seedRoles {
		if _, err := Exec(ctx, s.DB, s.bind(
			`INSERT INTO roles (id, name, description) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`),
			role.id, role.name, role.description); err != nil {
			return fmt.Errorf("seed role %s: %w", role.name, err)
		}
	}
	if s.Dialect.Name() == "postgres" {
		// explicit ids bypass the sequence, realign it
		if _, err := Exec(ctx, s.DB,
			`SELECT setval('roles_id_seq', (SELECT MAX(id) FROM roles))`); err != nil {
			return fmt.Errorf("seed roles sequence: %w", err)
		}
	}

	perms := make([][2]string, 0, len(crudResources)*len(crudActions)+len(extraPermissions))
	for _, resource := range crudResources {
		for _, action := range crudActions {
			perms = append(perms, [2]string{resource, action})
		}
	}
	perms = append(perms, extraPermissions...)

	for _, p := range perms {
		if _, err := Exec(ctx, s.DB, s.bind(
			`INSERT INTO permissions (resource, action) VALUES (?, ?) ON CONFLICT DO NOTHING`),
			p[0], p[1]); err != nil {
			return fmt.Errorf("seed permission %s:%s: %w", p[0], p[1], err)
		}
	}

	// superadmin holds every permission, admin manages users and roles,
	// editor and viewer get scoped content access
	grants := map[int64]string{
		rbac.SuperadminRoleID: `SELECT id FROM permissions`,
		2:                     `SELECT id FROM permissions WHERE resource IN ('users', 'roles', 'customers', 'contacts', 'settings', 'audit')`,
		3:                     `SELECT id FROM permissions WHERE resource IN ('customers', 'contacts', 'proposals', 'data') AND action IN ('create', 'read', 'update', 'use')`,
		4:                     `SELECT id FROM permissions WHERE action IN ('read', 'use') AND resource NOT IN ('audit')`,
	}
	for roleID, sub := range grants {
		if _, err := Exec(ctx, s.DB, s.bind(
			`INSERT INTO role_permissions (role_id, permission_id)
			 SELECT ?, id FROM (`+sub+`) AS p WHERE true ON CONFLICT DO NOTHING`),
			roleID); err != nil {
			return fmt.Errorf("seed role %d grants: %w", roleID, err)
		}
	}

	if adminEmail == "" {
		return nil
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	if _, err := Exec(ctx, s.DB, s.bind(
		`INSERT INTO users (email, name, password_hash, active) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`),
		adminEmail, "Superadmin", hash, true); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if _, err := Exec(ctx, s.DB, s.bind(
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT id, ? FROM users WHERE email = ? ON CONFLICT DO NOTHING`),
		rbac.SuperadminRoleID, adminEmail); err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}
	return nil
}
