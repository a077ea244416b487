package rbac

import (
	"reflect"
	"testing"
)

func TestResolveEffectivePermissions_NilUser(t *testing.T) {
	if got := ResolveEffectivePermissions(nil); len(got) != 0 {
		t.Fatalf("expected empty set for nil user, got %v", got)
	}
}

func TestResolveEffectivePermissions_FlatDirectPlusRole(t *testing.T) {
	// Direct flat grant {users, create} plus a role granting {users, [read]}
	// must merge into one entry with both actions.
	user := &UserProfile{
		ID:          1,
		Permissions: []Grant{{Resource: "users", Action: "create"}},
		Roles: []Role{
			{ID: 2, Name: "viewer", Permissions: []Permission{
				{Resource: "users", Actions: []string{"read"}},
			}},
		},
	}

	perms := ResolveEffectivePermissions(user)
	if len(perms) != 1 {
		t.Fatalf("expected 1 merged entry, got %d: %v", len(perms), perms)
	}
	if perms[0].Resource != "users" {
		t.Fatalf("expected resource users, got %s", perms[0].Resource)
	}
	if !reflect.DeepEqual(perms[0].Actions, []string{"create", "read"}) {
		t.Fatalf("expected actions [create read], got %v", perms[0].Actions)
	}
}

func TestResolveEffectivePermissions_NoDuplicateKeys(t *testing.T) {
	user := &UserProfile{
		ID: 1,
		Permissions: []Grant{
			{Resource: "articles", Action: "read"},
			{Resource: "articles", Actions: []string{"read", "update"}},
		},
		Roles: []Role{
			{ID: 2, Name: "editor", Permissions: []Permission{
				{Resource: "articles", Actions: []string{"update", "delete"}},
				{Resource: "articles", Actions: []string{"read"}},
			}},
			{ID: 3, Name: "auditor", Permissions: []Permission{
				{Resource: "articles", Actions: []string{"read"}},
			}},
		},
	}

	perms := ResolveEffectivePermissions(user)
	if len(perms) != 1 {
		t.Fatalf("expected 1 entry for articles, got %d: %v", len(perms), perms)
	}
	if !reflect.DeepEqual(perms[0].Actions, []string{"read", "update", "delete"}) {
		t.Fatalf("expected union [read update delete], got %v", perms[0].Actions)
	}
}

func TestResolveEffectivePermissions_ConditionsSplitEntries(t *testing.T) {
	// Same resource with different condition sets stays separate; equal
	// condition sets merge regardless of map construction order.
	user := &UserProfile{
		ID: 7,
		Roles: []Role{
			{ID: 2, Name: "editor", Permissions: []Permission{
				{Resource: "articles", Actions: []string{"update"}, Conditions: Conditions{"ownerId": 7, "status": "draft"}},
				{Resource: "articles", Actions: []string{"delete"}, Conditions: Conditions{"status": "draft", "ownerId": 7}},
				{Resource: "articles", Actions: []string{"read"}},
			}},
		},
	}

	perms := ResolveEffectivePermissions(user)
	if len(perms) != 2 {
		t.Fatalf("expected 2 entries (conditional + unconditional), got %d: %v", len(perms), perms)
	}

	var conditional *Permission
	for i := range perms {
		if len(perms[i].Conditions) > 0 {
			conditional = &perms[i]
		}
	}
	if conditional == nil {
		t.Fatal("expected a conditional entry")
	}
	if !reflect.DeepEqual(conditional.Actions, []string{"update", "delete"}) {
		t.Fatalf("expected conditional actions [update delete], got %v", conditional.Actions)
	}
}

func TestResolveEffectivePermissions_SkipsMalformedGrants(t *testing.T) {
	user := &UserProfile{
		ID: 1,
		Permissions: []Grant{
			{Resource: "", Action: "read"},
			{Resource: "users"},
			{Resource: "users", Action: "read"},
		},
	}

	perms := ResolveEffectivePermissions(user)
	if len(perms) != 1 {
		t.Fatalf("expected only the well-formed grant, got %v", perms)
	}
	if !reflect.DeepEqual(perms[0].Actions, []string{"read"}) {
		t.Fatalf("expected [read], got %v", perms[0].Actions)
	}
}

func TestMergePermissions_Idempotent(t *testing.T) {
	a := Permission{Resource: "users", Actions: []string{"read", "update"}}
	b := Permission{Resource: "users", Actions: []string{"update", "read"}}

	merged := mergePermissions(a, b)
	if !reflect.DeepEqual(merged.Actions, []string{"read", "update"}) {
		t.Fatalf("expected [read update], got %v", merged.Actions)
	}

	again := mergePermissions(merged, b)
	if !reflect.DeepEqual(again.Actions, merged.Actions) {
		t.Fatalf("merge not idempotent: %v vs %v", again.Actions, merged.Actions)
	}
}

func TestDedupKey_OrderIndependent(t *testing.T) {
	k1 := dedupKey("articles", Conditions{"ownerId": 7, "status": "draft"})
	k2 := dedupKey("articles", Conditions{"status": "draft", "ownerId": 7})
	if k1 != k2 {
		t.Fatalf("keys differ for equal condition sets: %q vs %q", k1, k2)
	}

	k3 := dedupKey("articles", nil)
	k4 := dedupKey("articles", Conditions{})
	if k3 != k4 {
		t.Fatalf("nil and empty conditions must share a key: %q vs %q", k3, k4)
	}
	if k1 == k3 {
		t.Fatal("conditional and unconditional entries must not collide")
	}
}
