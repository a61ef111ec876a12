package tags

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func useTempFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pass", "host.yaml")
	t.Setenv(EnvPath, p)
	return p
}

func TestAutoDetect(t *testing.T) {
	detected := AutoDetect()
	if len(detected) < 2 {
		t.Fatalf("expected at least 2 tags, got %d", len(detected))
	}
	if detected[0] != runtime.GOOS {
		t.Errorf("first tag = %q, want %q", detected[0], runtime.GOOS)
	}
	if detected[1] != runtime.GOARCH {
		t.Errorf("second tag = %q, want %q", detected[1], runtime.GOARCH)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if filepath.Base(Path()) != "host.yaml" {
		t.Errorf("Path() basename = %q", filepath.Base(Path()))
	}
	p := useTempFile(t)
	if Path() != p {
		t.Errorf("Path() = %q, want %q", Path(), p)
	}
}

func TestLoadMissing(t *testing.T) {
	useTempFile(t)
	h, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !h.Has(runtime.GOOS) {
		t.Errorf("tags %v should contain %s", h.Tags, runtime.GOOS)
	}
}

func TestAddRemove(t *testing.T) {
	p := useTempFile(t)
	if err := Save(&Host{Tags: []string{"web"}}); err != nil {
		t.Fatal(err)
	}
	if err := Add("staging"); err != nil {
		t.Fatal(err)
	}
	if err := Add("staging"); err != nil {
		t.Fatal(err)
	}
	h, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(h.Tags, []string{"web", "staging"}) {
		t.Errorf("tags = %v", h.Tags)
	}

	if err := Remove("web"); err != nil {
		t.Fatal(err)
	}
	if err := Remove("absent"); err != nil {
		t.Fatal(err)
	}
	h, _ = Load()
	if !slices.Equal(h.Tags, []string{"staging"}) {
		t.Errorf("tags = %v", h.Tags)
	}
	if _, err := os.Stat(p); err != nil {
		t.Errorf("host file not written: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	p := useTempFile(t)
	os.MkdirAll(filepath.Dir(p), 0o755)
	os.WriteFile(p, []byte("tags: [unclosed"), 0o644)
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}
