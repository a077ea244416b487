package rbac

// mergePermissions unions the action sets of two permissions that share a
// dedup key. The existing entry's resource and conditions win (they are equal
// by definition of the key); action order is first-seen.
func mergePermissions(existing, incoming Permission) Permission {
	seen := make(map[string]bool, len(existing.Actions))
	merged := make([]string, 0, len(existing.Actions)+len(incoming.Actions))
	for _, a := range existing.Actions {
		if !seen[a] {
			seen[a] = true
			merged = append(merged, a)
		}
	}
	for _, a := range incoming.Actions {
		if !seen[a] {
			seen[a] = true
			merged = append(merged, a)
		}
	}
	existing.Actions = merged
	return existing
}

// ResolveEffectivePermissions computes the user's effective permission set:
// direct grants first, then each role's permissions, merged by
// (resource, conditions). The merge is commutative and idempotent, so the
// result does not depend on which source contributed an action first; output
// order is insertion order for stable tests. A nil user has no permissions.
func ResolveEffectivePermissions(user *UserProfile) []Permission {
	if user == nil {
		return nil
	}

	byKey := make(map[string]Permission)
	var order []string

	add := func(p Permission) {
		key := dedupKey(p.Resource, p.Conditions)
		if existing, ok := byKey[key]; ok {
			byKey[key] = mergePermissions(existing, p)
			return
		}
		byKey[key] = mergePermissions(Permission{Resource: p.Resource, Conditions: p.Conditions}, p)
		order = append(order, key)
	}

	for _, g := range user.Permissions {
		if p, ok := g.normalize(); ok {
			add(p)
		}
	}
	for _, role := range user.Roles {
		for _, p := range role.Permissions {
			if len(p.Actions) == 0 {
				continue
			}
			add(p)
		}
	}

	result := make([]Permission, 0, len(order))
	for _, key := range order {
		result = append(result, byKey[key])
	}
	return result
}
