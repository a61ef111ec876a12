package checks

import (
	"fmt"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/process"
)

// PackageInstalled is met when manager reports pkg as installed. Managers
// with no query command, and managers that cannot be started, are
// Undetermined.
func PackageInstalled(manager, pkg string) capability.Prober {
	return capability.NewProbe(fmt.Sprintf("%s package %s installed", manager, pkg), func() capability.Verdict {
		args := queryArgs(manager, pkg)
		if args == nil {
			return capability.Undetermined
		}
		res := process.Run(args)
		if res.Code == process.FailOnStart {
			return capability.Undetermined
		}
		return capability.VerdictOf(res.OK())
	})
}

// queryArgs returns a command exiting 0 exactly when pkg is installed, or nil
// when manager has no such query.
func queryArgs(manager, pkg string) []string {
	switch manager {
	case "brew":
		return []string{"brew", "list", "--formula", pkg}
	case "brew-cask":
		return []string{"brew", "list", "--cask", pkg}
	case "mas":
		return []string{"sh", "-c", "mas list | grep -q '^" + pkg + " '"}
	case "winget":
		return []string{"winget", "list", "--id", pkg, "-e"}
	case "choco":
		return []string{"choco", "list", "--local-only", "--exact", pkg}
	case "scoop":
		return []string{"scoop", "prefix", pkg}
	case "apt", "apt-get":
		return []string{"dpkg-query", "-W", "-f=${Status}", pkg}
	case "dnf", "yum":
		return []string{"rpm", "-q", pkg}
	case "pacman":
		return []string{"pacman", "-Q", pkg}
	case "snap":
		return []string{"snap", "list", pkg}
	case "flatpak":
		return []string{"flatpak", "info", pkg}
	default:
		return nil
	}
}
