package checks

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/tags"
)

// UserIsRoot is met when the process runs with effective uid 0. It is never
// met on Windows.
func UserIsRoot() capability.Check {
	return capability.NewCheck("user is root", func() bool {
		return runtime.GOOS != "windows" && os.Geteuid() == 0
	})
}

// UserIs is met when the current user's login name is name.
func UserIs(name string) capability.Prober {
	check := fmt.Sprintf("user is %s", name)
	return capability.NewProbe(check, func() capability.Verdict {
		u, err := user.Current()
		if err != nil {
			log.Debug().Err(err).Str("check", check).Msg("check undetermined")
			return capability.Undetermined
		}
		return capability.VerdictOf(u.Username == name)
	})
}

// UserExists is met when the account name is known to the system.
func UserExists(name string) capability.Prober {
	check := fmt.Sprintf("user %s exists", name)
	return capability.NewProbe(check, func() capability.Verdict {
		_, err := user.Lookup(name)
		if err == nil {
			return capability.Yes
		}
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return capability.No
		}
		log.Debug().Err(err).Str("check", check).Msg("check undetermined")
		return capability.Undetermined
	})
}

// IsOS is met when the program runs on goos ("linux", "darwin", ...).
func IsOS(goos string) capability.Check {
	return capability.NewCheck(fmt.Sprintf("os is %s", goos), func() bool {
		return runtime.GOOS == goos
	})
}

// HasTag is met when the host tags file lists tag.
func HasTag(tag string) capability.Prober {
	check := fmt.Sprintf("host is tagged %s", tag)
	return capability.NewProbe(check, func() capability.Verdict {
		h, err := tags.Load()
		if err != nil {
			log.Debug().Err(err).Str("check", check).Msg("check undetermined")
			return capability.Undetermined
		}
		return capability.VerdictOf(h.Has(tag))
	})
}
