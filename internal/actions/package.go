package actions

import (
	"fmt"
	"strings"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/platform"
	"github.com/atomikpanda/pass/internal/process"
)

// InstallPackages installs names with manager in a single non-interactive
// invocation. It fails without running anything when manager is unknown or
// belongs to another OS.
func InstallPackages(manager string, names ...string) capability.Action {
	name := fmt.Sprintf("install %s packages %s", manager, strings.Join(names, ", "))
	return capability.NewAction(name, func() capability.Result {
		if !platform.ManagerAvailable(manager, platform.Current()) {
			return capability.FromError(name, fmt.Errorf("%s is not available on %s", manager, platform.Current()))
		}
		args, err := installArgs(manager, names...)
		if err != nil {
			return capability.FromError(name, err)
		}
		return capability.ResultOf(process.Run(args).OK())
	})
}

// InstallAptPackages installs names with apt-get.
func InstallAptPackages(names ...string) capability.Action {
	return InstallPackages("apt", names...)
}

// installArgs returns the command line installing pkgs with manager.
func installArgs(manager string, pkgs ...string) ([]string, error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages to install")
	}
	var head []string
	switch manager {
	case "brew":
		head = []string{"brew", "install"}
	case "brew-cask":
		head = []string{"brew", "install", "--cask"}
	case "mas":
		head = []string{"mas", "install"}
	case "winget":
		head = []string{"winget", "install", "-e", "--accept-source-agreements", "--id"}
	case "choco":
		head = []string{"choco", "install", "-y"}
	case "scoop":
		head = []string{"scoop", "install"}
	case "apt", "apt-get":
		head = []string{"apt-get", "install", "-y"}
	case "dnf":
		head = []string{"dnf", "install", "-y"}
	case "yum":
		head = []string{"yum", "install", "-y"}
	case "pacman":
		head = []string{"pacman", "-S", "--noconfirm"}
	case "snap":
		head = []string{"snap", "install"}
	case "flatpak":
		head = []string{"flatpak", "install", "-y"}
	case "nix":
		head = []string{"nix-env", "-iA"}
	default:
		return nil, fmt.Errorf("unknown package manager: %q", manager)
	}
	return append(head, pkgs...), nil
}
