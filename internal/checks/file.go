// Package checks is the catalog of leaf checks over the local host: files,
// users, the operating system, command output and systemd services.
//
// Checks that can fail to observe their fact return a capability.Prober and
// report Undetermined instead of guessing. Every other failure is a plain No.
package checks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/pattern"
)

// IsFile is met when path exists and is a regular file. Symlinks are followed.
func IsFile(path string) capability.Prober {
	return statProbe(fmt.Sprintf("is file %s", path), path, func(fi fs.FileInfo) bool {
		return fi.Mode().IsRegular()
	})
}

// IsDir is met when path exists and is a directory.
func IsDir(path string) capability.Prober {
	return statProbe(fmt.Sprintf("is dir %s", path), path, fs.FileInfo.IsDir)
}

// PathExists is met when anything exists at path.
func PathExists(path string) capability.Prober {
	return statProbe(fmt.Sprintf("path exists %s", path), path, func(fs.FileInfo) bool {
		return true
	})
}

// FileContains is met when the file at path contains p at least once.
func FileContains(path string, p pattern.Pattern) capability.Prober {
	return readProbe(fmt.Sprintf("file %s contains %s", path, p), path, p.Contains)
}

// FileContainsOnce is met when p occurs in the file at path exactly once.
func FileContainsOnce(path string, p pattern.Pattern) capability.Prober {
	return readProbe(fmt.Sprintf("file %s contains once %s", path, p), path, p.ContainsOnce)
}

func statProbe(name, path string, fn func(fs.FileInfo) bool) capability.Prober {
	return capability.NewProbe(name, func() capability.Verdict {
		fi, err := os.Stat(path)
		if err != nil {
			return notExistOr(name, err)
		}
		return capability.VerdictOf(fn(fi))
	})
}

func readProbe(name, path string, fn func([]byte) bool) capability.Prober {
	return capability.NewProbe(name, func() capability.Verdict {
		data, err := os.ReadFile(path)
		if err != nil {
			return notExistOr(name, err)
		}
		return capability.VerdictOf(fn(data))
	})
}

// notExistOr maps a missing path to No and any other error to Undetermined.
func notExistOr(name string, err error) capability.Verdict {
	if errors.Is(err, fs.ErrNotExist) {
		return capability.No
	}
	log.Debug().Err(err).Str("check", name).Msg("check undetermined")
	return capability.Undetermined
}
