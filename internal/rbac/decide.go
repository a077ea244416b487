package rbac

import "fmt"

// HasPermission reports whether the user can perform action on resource via a
// direct grant or any role. Unauthenticated (nil) users can do nothing; this
// is a plain false, never an error, so callers outside a request context need
// no error handling.
func HasPermission(user *UserProfile, resource, action string) bool {
	if user == nil {
		return false
	}
	for _, g := range user.Permissions {
		if g.allows(resource, action) {
			return true
		}
	}
	for _, role := range user.Roles {
		for _, p := range role.Permissions {
			if p.Resource != resource {
				continue
			}
			for _, a := range p.Actions {
				if a == action {
					return true
				}
			}
		}
	}
	return false
}

// HasAllPermissions is the conjunction of HasPermission over all checks.
func HasAllPermissions(user *UserProfile, checks []PermissionCheck) bool {
	for _, check := range checks {
		if !HasPermission(user, check.Resource, check.Action) {
			return false
		}
	}
	return true
}

// HasAnyPermission is the disjunction of HasPermission over all checks.
func HasAnyPermission(user *UserProfile, checks []PermissionCheck) bool {
	for _, check := range checks {
		if HasPermission(user, check.Resource, check.Action) {
			return true
		}
	}
	return false
}

// CanPerformAction checks resource+action like HasPermission, then evaluates
// the matching entry's conditions against the record data and the user. All
// recognized conditions must hold; a permission without conditions is an
// unconditional grant.
func CanPerformAction(user *UserProfile, resource, action string, data map[string]any) bool {
	if user == nil {
		return false
	}

	permissions := ResolveEffectivePermissions(user)
	var match *Permission
	for i := range permissions {
		p := &permissions[i]
		if p.Resource != resource {
			continue
		}
		for _, a := range p.Actions {
			if a == action {
				match = p
				break
			}
		}
		if match != nil {
			break
		}
	}
	if match == nil {
		return false
	}
	return evaluateConditions(match.Conditions, data, user)
}

// evaluateConditions applies AND semantics over the recognized condition keys.
// A missing attribute fails the check; it is never vacuously true.
// Unrecognized keys are skipped (current behavior, see DESIGN.md).
func evaluateConditions(conditions Conditions, data map[string]any, user *UserProfile) bool {
	if len(conditions) == 0 {
		return true
	}
	for key, expected := range conditions {
		switch key {
		case "ownerId":
			if data == nil || !equalValues(data["ownerId"], user.ID) {
				return false
			}
		case "department":
			if user.Metadata == nil || !equalValues(user.Metadata["department"], expected) {
				return false
			}
		case "status":
			if data == nil || !equalValues(data["status"], expected) {
				return false
			}
		}
	}
	return true
}

// equalValues compares loosely across numeric types; JSON decoding yields
// float64 where the profile holds int64.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// HasRole checks role membership by name.
func HasRole(user *UserProfile, roleName string) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		if role.Name == roleName {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the user holds every named role.
func HasAllRoles(user *UserProfile, roleNames []string) bool {
	for _, name := range roleNames {
		if !HasRole(user, name) {
			return false
		}
	}
	return user != nil
}

// HasAnyRole reports whether the user holds at least one of the named roles.
func HasAnyRole(user *UserProfile, roleNames []string) bool {
	for _, name := range roleNames {
		if HasRole(user, name) {
			return true
		}
	}
	return false
}

// IsSuperadmin reports whether the user holds the reserved superadmin role.
func IsSuperadmin(user *UserProfile) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		if role.ID == SuperadminRoleID {
			return true
		}
	}
	return false
}

// GetAllowedResources returns the distinct resources the user has any
// permission on, in resolution order.
func GetAllowedResources(user *UserProfile) []string {
	seen := make(map[string]bool)
	var resources []string
	for _, p := range ResolveEffectivePermissions(user) {
		if !seen[p.Resource] {
			seen[p.Resource] = true
			resources = append(resources, p.Resource)
		}
	}
	return resources
}

// GetAllowedActions returns the union of actions the user can perform on a
// resource, across all matching entries.
func GetAllowedActions(user *UserProfile, resource string) []string {
	seen := make(map[string]bool)
	var actions []string
	for _, p := range ResolveEffectivePermissions(user) {
		if p.Resource != resource {
			continue
		}
		for _, a := range p.Actions {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	return actions
}
