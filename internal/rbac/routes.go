package rbac

import (
	"sort"
	"strings"
)

// RoutePermission is the permission required to access an application route.
type RoutePermission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// routePermissions maps application paths to the permission they require.
// Child paths inherit their parent's entry unless they have their own.
var routePermissions = map[string]RoutePermission{
	// User management
	"/admin/users":          {Resource: "users", Action: "read"},
	"/admin/customers":      {Resource: "customers", Action: "read"},
	"/admin/contact-person": {Resource: "contacts", Action: "read"},

	// Roles
	"/roles": {Resource: "roles", Action: "read"},

	// System settings
	"/settings":         {Resource: "settings", Action: "read"},
	"/settings/general": {Resource: "settings", Action: "read"},
	"/settings/team":    {Resource: "settings", Action: "manage"},
	"/settings/billing": {Resource: "billing", Action: "read"},
	"/settings/limits":  {Resource: "settings", Action: "manage"},

	// Proposals
	"/capture/active":     {Resource: "proposals", Action: "read"},
	"/capture/archived":   {Resource: "proposals", Action: "read"},
	"/proposals/active":   {Resource: "proposals", Action: "read"},
	"/proposals/archived": {Resource: "proposals", Action: "read"},

	// Documents
	"/data-library":   {Resource: "data", Action: "read"},
	"/reports":        {Resource: "reports", Action: "read"},
	"/word-assistant": {Resource: "assistant", Action: "use"},
}

// publicRoutes require authentication only, no specific permission.
var publicRoutes = []string{
	"/",
	"/help",
	"/search",
	"/admin", // dashboard is accessible to all authenticated users
}

// routePaths holds the registered paths longest-first so prefix matching is
// deterministic and the most specific entry wins.
var routePaths = func() []string {
	paths := make([]string, 0, len(routePermissions))
	for p := range routePermissions {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return paths[i] < paths[j]
	})
	return paths
}()

// RequiredPermission returns the permission guarding a path: an exact match
// first, then the most specific registered parent path. The second return is
// false for unmapped paths.
func RequiredPermission(path string) (RoutePermission, bool) {
	if perm, ok := routePermissions[path]; ok {
		return perm, true
	}
	for _, route := range routePaths {
		if strings.HasPrefix(path, route+"/") {
			return routePermissions[route], true
		}
	}
	return RoutePermission{}, false
}

// IsPublicRoute reports whether a path needs no permission check.
func IsPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// CanAccessRoute reports whether the user holds every permission in the list.
func CanAccessRoute(user *UserProfile, perms []RoutePermission) bool {
	for _, p := range perms {
		if !HasPermission(user, p.Resource, p.Action) {
			return false
		}
	}
	return true
}

// AccessibleRoutes lists the mapped routes the user may open. Superadmins see
// everything.
func AccessibleRoutes(user *UserProfile) []string {
	var routes []string
	super := IsSuperadmin(user)
	for _, path := range routePaths {
		perm := routePermissions[path]
		if super || HasPermission(user, perm.Resource, perm.Action) {
			routes = append(routes, path)
		}
	}
	sort.Strings(routes)
	return routes
}
