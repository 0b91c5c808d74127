package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment line
SILENTAUTH_TEST_PLAIN=value
SILENTAUTH_TEST_QUOTED="quoted value"
SILENTAUTH_TEST_EXISTING=from-file

malformed line without equals
=no-key
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("SILENTAUTH_TEST_EXISTING", "from-env")
	for _, key := range []string{"SILENTAUTH_TEST_PLAIN", "SILENTAUTH_TEST_QUOTED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := os.Getenv("SILENTAUTH_TEST_PLAIN"); got != "value" {
		t.Errorf("plain: got %q", got)
	}
	if got := os.Getenv("SILENTAUTH_TEST_QUOTED"); got != "quoted value" {
		t.Errorf("quoted: got %q", got)
	}
	// Process environment wins over the file.
	if got := os.Getenv("SILENTAUTH_TEST_EXISTING"); got != "from-env" {
		t.Errorf("existing: got %q", got)
	}
}

func TestLoadEnvFileMissingIsNoop(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file must be a no-op, got %v", err)
	}
}
