// Package platform answers questions about the host a playbook runs on.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	Darwin  = "darwin"
	Linux   = "linux"
	Windows = "windows"
)

// Info describes the running host.
type Info struct {
	OS       string
	Arch     string
	Hostname string // empty when it cannot be read
}

// Host returns the Info of the running host.
func Host() Info {
	h, _ := os.Hostname()
	return Info{OS: runtime.GOOS, Arch: runtime.GOARCH, Hostname: h}
}

// Current returns runtime.GOOS.
func Current() string {
	return runtime.GOOS
}

// ExpandPath expands "~", a leading "~/" and environment variables in path.
// A home directory that cannot be determined leaves the tilde in place.
func ExpandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return os.ExpandEnv(path)
}

var managerOS = map[string]string{
	"brew":      Darwin,
	"brew-cask": Darwin,
	"mas":       Darwin,
	"winget":    Windows,
	"choco":     Windows,
	"scoop":     Windows,
	"apt":       Linux,
	"apt-get":   Linux,
	"dnf":       Linux,
	"yum":       Linux,
	"pacman":    Linux,
	"snap":      Linux,
	// nix and flatpak run on several systems and are left out
}

// PackageManagerOS maps a package manager name to the OS it runs on, or ""
// when the manager is not tied to one.
func PackageManagerOS(manager string) string {
	return managerOS[manager]
}

// ManagerAvailable reports whether manager can run on goos.
func ManagerAvailable(manager, goos string) bool {
	target := PackageManagerOS(manager)
	return target == "" || target == goos
}
