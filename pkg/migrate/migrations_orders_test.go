package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sxo6luxe/sxo6-backend/pkg/migrate"
)

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key",
		"shipping_address jsonb NOT NULL",
		"CREATE TABLE IF NOT EXISTS order_items",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCheckoutStepsMigrationEnforcesUniqueStep(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payment_transactions",
		"CREATE UNIQUE INDEX IF NOT EXISTS payment_transactions_reference_key",
		"CREATE TABLE IF NOT EXISTS checkout_steps",
		"CREATE UNIQUE INDEX IF NOT EXISTS checkout_steps_order_step_key ON checkout_steps (order_id, step)",
		"'decrement_inventory'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAllMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations invalid: %v", err)
	}
}
