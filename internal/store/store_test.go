package store

import (
	"testing"
)

func TestRebindNumbered(t *testing.T) {
	got := rebindNumbered(`SELECT id FROM users WHERE email = ? AND active = ?`)
	want := `SELECT id FROM users WHERE email = $1 AND active = $2`
	if got != want {
		t.Fatalf("rebind mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRebindNumbered_NoPlaceholders(t *testing.T) {
	q := `SELECT id FROM roles ORDER BY id`
	if got := rebindNumbered(q); got != q {
		t.Fatalf("query without placeholders changed: %s", got)
	}
}

func TestNewDialect(t *testing.T) {
	if d := NewDialect("sqlite"); d.Name() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", d.Name())
	}
	if d := NewDialect("postgres"); d.Name() != "postgres" {
		t.Fatalf("expected postgres dialect, got %s", d.Name())
	}
	// unknown drivers fall back to postgres
	if d := NewDialect("mysql"); d.Name() != "postgres" {
		t.Fatalf("expected postgres fallback, got %s", d.Name())
	}
}

func TestPostgresDialect_Rebind(t *testing.T) {
	d := NewDialect("postgres")
	got := d.Rebind(`UPDATE users SET name = ? WHERE id = ?`)
	if got != `UPDATE users SET name = $1 WHERE id = $2` {
		t.Fatalf("unexpected rebind: %s", got)
	}
}

func TestSQLiteDialect_RebindIdentity(t *testing.T) {
	d := NewDialect("sqlite")
	q := `UPDATE users SET name = ? WHERE id = ?`
	if got := d.Rebind(q); got != q {
		t.Fatalf("sqlite rebind should be identity: %s", got)
	}
}

func TestScanConditions(t *testing.T) {
	conds := scanConditions(`{"ownerId": "{{userId}}", "status": "draft"}`)
	if conds == nil {
		t.Fatal("expected conditions, got nil")
	}
	if conds["ownerId"] != "{{userId}}" {
		t.Fatalf("expected ownerId placeholder, got %v", conds["ownerId"])
	}
	if conds["status"] != "draft" {
		t.Fatalf("expected status=draft, got %v", conds["status"])
	}
}

func TestScanConditions_ByteSlice(t *testing.T) {
	conds := scanConditions([]byte(`{"department": "sales"}`))
	if conds == nil || conds["department"] != "sales" {
		t.Fatalf("expected department=sales, got %v", conds)
	}
}

func TestScanConditions_Empty(t *testing.T) {
	if conds := scanConditions(nil); conds != nil {
		t.Fatalf("nil value should decode to nil, got %v", conds)
	}
	if conds := scanConditions(""); conds != nil {
		t.Fatalf("empty string should decode to nil, got %v", conds)
	}
	if conds := scanConditions(`{}`); conds != nil {
		t.Fatalf("empty object should decode to nil, got %v", conds)
	}
	if conds := scanConditions(`not json`); conds != nil {
		t.Fatalf("malformed value should decode to nil, got %v", conds)
	}
}

func TestNormalizeBooleans(t *testing.T) {
	rows := []map[string]any{
		{"id": int64(1), "active": int64(1)},
		{"id": int64(2), "active": int64(0)},
		{"id": int64(3), "active": true},
	}
	NormalizeBooleans(rows, []string{"active"})
	if rows[0]["active"] != true || rows[1]["active"] != false || rows[2]["active"] != true {
		t.Fatalf("booleans not normalized: %v", rows)
	}
}

func TestToInt64(t *testing.T) {
	if got := toInt64(int64(7)); got != 7 {
		t.Fatalf("int64: got %d", got)
	}
	if got := toInt64(float64(7)); got != 7 {
		t.Fatalf("float64: got %d", got)
	}
	if got := toInt64(nil); got != 0 {
		t.Fatalf("nil: got %d", got)
	}
	if got := toInt64("7"); got != 0 {
		t.Fatalf("unconvertible values fall back to 0, got %d", got)
	}
}
