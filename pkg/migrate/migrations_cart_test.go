package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCartMigrationEnforcesOwnerXOR(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_items.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no cart migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CONSTRAINT cart_items_owner_xor CHECK",
		"(user_id IS NOT NULL AND session_id IS NULL)",
		"(user_id IS NULL AND session_id IS NOT NULL)",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS cart_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
