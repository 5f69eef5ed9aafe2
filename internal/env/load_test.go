package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("TOURMAP_ENV_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOURMAP_ENV_TEST", "")
	os.Unsetenv("TOURMAP_ENV_TEST")

	loaded, err := LoadEnv(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if !loaded {
		t.Error("LoadEnv() reported nothing loaded")
	}
	if got := os.Getenv("TOURMAP_ENV_TEST"); got != "from-file" {
		t.Errorf("TOURMAP_ENV_TEST = %q", got)
	}
}

func TestLoadEnv_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	_ = os.WriteFile(path, []byte("TOURMAP_ENV_KEEP=from-file\n"), 0o600)
	t.Setenv("TOURMAP_ENV_KEEP", "from-env")

	if _, err := LoadEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TOURMAP_ENV_KEEP"); got != "from-env" {
		t.Errorf("TOURMAP_ENV_KEEP = %q, want from-env", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	chdir(t, t.TempDir())
	loaded, err := LoadEnv()
	if err != nil || loaded {
		t.Errorf("LoadEnv() = %v, %v; want false, nil", loaded, err)
	}
}

// chdir switches to dir for the duration of the test and restores the
// previous working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
