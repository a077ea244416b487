package rbac

import (
	"fmt"
	"sort"
	"strings"
)

// SuperadminRoleID is the reserved sentinel role. A user holding it bypasses
// every permission check. The seed inserts this role with a fixed id so the
// sentinel survives renames.
const SuperadminRoleID int64 = 1

// Conditions narrows a permission's applicability by attribute. Only the keys
// "ownerId", "department" and "status" are evaluated; anything else is
// currently ignored.
type Conditions map[string]any

// Permission grants a set of actions on one resource, optionally scoped by
// conditions. Actions is non-empty and deduplicated once normalized.
type Permission struct {
	Resource   string     `json:"resource"`
	Actions    []string   `json:"actions"`
	Conditions Conditions `json:"conditions,omitempty"`
}

// Grant is the wire shape of a direct permission. The identity store and
// older API payloads emit either a flat {resource, action} entry or a grouped
// {resource, actions} entry; normalize folds both into a Permission so nothing
// downstream has to probe which shape it got.
type Grant struct {
	Resource   string     `json:"resource"`
	Action     string     `json:"action,omitempty"`
	Actions    []string   `json:"actions,omitempty"`
	Conditions Conditions `json:"conditions,omitempty"`
}

// normalize converts a grant to grouped form. Returns false for entries that
// carry no resource or no action at all.
func (g Grant) normalize() (Permission, bool) {
	if g.Resource == "" {
		return Permission{}, false
	}
	actions := g.Actions
	if len(actions) == 0 {
		if g.Action == "" {
			return Permission{}, false
		}
		actions = []string{g.Action}
	}
	return Permission{Resource: g.Resource, Actions: actions, Conditions: g.Conditions}, true
}

// allows reports whether the grant covers the given action, in either shape.
func (g Grant) allows(resource, action string) bool {
	if g.Resource != resource {
		return false
	}
	if g.Action == action {
		return true
	}
	for _, a := range g.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Role is an immutable snapshot of a named role and its grouped permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// UserProfile is the identity-store view of a user: roles, direct grants and
// free-form metadata consulted by condition evaluation.
type UserProfile struct {
	ID          int64          `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Roles       []Role         `json:"roles,omitempty"`
	Permissions []Grant        `json:"permissions,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PermissionCheck is one (resource, action) requirement, optionally with the
// record data conditions are evaluated against.
type PermissionCheck struct {
	Resource string         `json:"resource"`
	Action   string         `json:"action"`
	Data     map[string]any `json:"data,omitempty"`
}

// dedupKey identifies a permission entry by resource plus a canonical,
// order-independent serialization of its conditions. Two permissions whose
// condition maps hold the same pairs always share a key, regardless of how
// the maps were built.
func dedupKey(resource string, conditions Conditions) string {
	if len(conditions) == 0 {
		return resource + ":{}"
	}
	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(resource)
	b.WriteString(":{")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%v", k, conditions[k])
	}
	b.WriteByte('}')
	return b.String()
}
