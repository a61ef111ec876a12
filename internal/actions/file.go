// Package actions is the catalog of leaf actions: filesystem edits, secrets,
// commands, packages and systemd services. Each one performs its effect once
// per Run and reports Ok or Fail; causes of failure are logged at debug level.
package actions

import (
	"fmt"
	"os"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/pattern"
)

// WriteFile creates or truncates path and writes content. New files get mode
// 0644; an existing file keeps its mode.
func WriteFile(path string, content []byte) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("write file %s", path), func() error {
		return os.WriteFile(path, content, 0o644)
	})
}

// WriteFilePerm writes content to path and then applies perm. A permission
// failure leaves the written content in place.
func WriteFilePerm(path string, content []byte, perm PathPermissions) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("write file %s (%s)", path, perm), func() error {
		if err := os.WriteFile(path, content, perm.Mode); err != nil {
			return err
		}
		return perm.apply(path)
	})
}

// CreateDir creates the single directory path. Its parent must exist and path
// must not.
func CreateDir(path string) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("create dir %s", path), func() error {
		return os.Mkdir(path, 0o755)
	})
}

// CreateDirPerm creates the directory path and applies perm to it.
func CreateDirPerm(path string, perm PathPermissions) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("create dir %s (%s)", path, perm), func() error {
		if err := os.Mkdir(path, perm.Mode); err != nil {
			return err
		}
		return perm.apply(path)
	})
}

// DeleteFile removes the file or empty directory at path.
func DeleteFile(path string) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("delete %s", path), func() error {
		return os.Remove(path)
	})
}

// Rename moves from to to, replacing a file already at to.
func Rename(from, to string) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("rename %s to %s", from, to), func() error {
		return os.Rename(from, to)
	})
}

// ReplaceInFileOnce replaces the single occurrence of p in the file at path.
// It fails, leaving the file untouched, unless p occurs exactly once.
func ReplaceInFileOnce(path string, p pattern.Pattern, replacement []byte) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("replace %s once in %s", p, path), func() error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, ok := p.ReplaceOnce(data, replacement)
		if !ok {
			return fmt.Errorf("%s does not occur exactly once in %s", p, path)
		}
		return os.WriteFile(path, out, info.Mode().Perm())
	})
}
