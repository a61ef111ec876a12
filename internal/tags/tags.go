// Package tags manages the host tags that playbooks can gate instructions on,
// such as "web" or "staging". Tags live in ~/.config/pass/host.yaml.
package tags

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/atomikpanda/pass/internal/platform"
)

// EnvPath overrides the location of the host tags file.
const EnvPath = "PASS_HOST_FILE"

// Host is the schema of the host tags file.
type Host struct {
	Tags []string `yaml:"tags"`
}

// Path returns the path to the host tags file.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pass", "host.yaml")
}

// Load reads the host tags file. A missing file yields the auto-detected tags.
func Load() (*Host, error) {
	data, err := os.ReadFile(Path())
	if errors.Is(err, fs.ErrNotExist) {
		return &Host{Tags: AutoDetect()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read host tags: %w", err)
	}
	var h Host
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse host tags: %w", err)
	}
	return &h, nil
}

// Save writes h to the host tags file, creating parent directories.
func Save(h *Host) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AutoDetect returns the baseline tags of the current host: OS, architecture
// and hostname.
func AutoDetect() []string {
	h := platform.Host()
	tags := []string{h.OS, h.Arch}
	if h.Hostname != "" {
		tags = append(tags, h.Hostname)
	}
	return tags
}

// Add records tag on the host unless it is already present.
func Add(tag string) error {
	h, err := Load()
	if err != nil {
		return err
	}
	if slices.Contains(h.Tags, tag) {
		return nil
	}
	h.Tags = append(h.Tags, tag)
	return Save(h)
}

// Remove drops tag from the host. Removing an absent tag is not an error.
func Remove(tag string) error {
	h, err := Load()
	if err != nil {
		return err
	}
	i := slices.Index(h.Tags, tag)
	if i < 0 {
		return nil
	}
	h.Tags = slices.Delete(h.Tags, i, i+1)
	return Save(h)
}

// Has reports whether the host carries tag.
func (h *Host) Has(tag string) bool {
	return slices.Contains(h.Tags, tag)
}
