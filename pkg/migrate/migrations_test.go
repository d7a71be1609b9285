package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/multierr"
)

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := ValidateFS(Migrations(), embeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("on-disk migrations invalid: %v", err)
	}
}

func TestValidateFSReportsEveryProblem(t *testing.T) {
	ok := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	fsys := fstest.MapFS{
		"m/20260101000000_create_things.sql":  {Data: []byte(ok)},
		"m/20260101000000_other_things.sql":   {Data: []byte(ok)},
		"m/20260102000000_create_things.sql":  {Data: []byte(ok)},
		"m/20260103000000_no_down.sql":        {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"m/20260104000000_backwards.sql":      {Data: []byte("-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n")},
		"m/create_things_without_version.sql": {Data: []byte(ok)},
		"m/README.md":                         {Data: []byte("notes")},
	}

	err := ValidateFS(fsys, "m")
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if got := len(multierr.Errors(err)); got != 5 {
		t.Fatalf("expected 5 problems, got %d: %v", got, err)
	}
	for _, want := range []string{"version 20260101000000", `name "create_things"`, "missing", "must come before", "YYYYMMDDHHMMSS"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidateFSRejectsEmptyDir(t *testing.T) {
	if err := ValidateFS(fstest.MapFS{"m/README.md": {Data: []byte("x")}}, "m"); err == nil {
		t.Fatal("expected an empty migrations dir to fail")
	}
}

func TestCheckoutAttemptsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_checkout_attempts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS checkout_attempts",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_attempts_gateway_session",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_attempts_idempotency_key",
		"CHECK (status IN ('awaiting_payment', 'confirmed', 'cancelled', 'expired'))",
		"DROP TABLE IF EXISTS checkout_attempts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPendingAttemptsMigrationRelaxesGatewaySession(t *testing.T) {
	content := readMigration(t, "*_checkout_attempts_pending.sql")

	checks := []string{
		"CHECK (status IN ('pending', 'awaiting_payment', 'confirmed', 'cancelled', 'expired'))",
		"ON checkout_attempts (gateway_session_id) WHERE gateway_session_id <> ''",
		"DELETE FROM checkout_attempts WHERE status = 'pending'",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationEnforcesOneOrderPerPaymentSession(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_payment_session_id ON orders (payment_session_id)",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS order_line_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Gift Cards!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_gift_cards.sql") {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "-- +goose Down") {
		t.Fatalf("template missing goose markers:\n%s", data)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestCreateSQLMigrationRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "add gift cards", first)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260301090000_add_gift_cards.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if _, err := createSQLMigration(dir, "Add-Gift Cards", first.Add(time.Hour)); err == nil {
		t.Fatalf("expected duplicate migration name to be rejected")
	}
	if _, err := createSQLMigration(dir, "!!!", first); err == nil {
		t.Fatalf("expected empty slug to be rejected")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := fs.Glob(Migrations(), embeddedDir+"/"+pattern)
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := fs.ReadFile(Migrations(), matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
