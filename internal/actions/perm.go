package actions

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/atomikpanda/pass/internal/capability"
)

// PathPermissions is the mode and owner a path should end up with. An empty
// Owner leaves ownership alone.
type PathPermissions struct {
	Mode  os.FileMode
	Owner string
}

// Perm returns PathPermissions for mode and owner.
func Perm(mode os.FileMode, owner string) PathPermissions {
	return PathPermissions{Mode: mode, Owner: owner}
}

func (p PathPermissions) String() string {
	if p.Owner == "" {
		return fmt.Sprintf("%04o", p.Mode.Perm())
	}
	return fmt.Sprintf("%04o %s", p.Mode.Perm(), p.Owner)
}

// SetPermissions applies perm to the existing path.
func SetPermissions(path string, perm PathPermissions) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("set permissions %s on %s", perm, path), func() error {
		return perm.apply(path)
	})
}

// apply chmods path, then chowns it to the owner's uid and primary gid.
func (p PathPermissions) apply(path string) error {
	if err := os.Chmod(path, p.Mode); err != nil {
		return err
	}
	if p.Owner == "" {
		return nil
	}
	uid, gid, err := lookupOwner(p.Owner)
	if err != nil {
		return err
	}
	return os.Chown(path, uid, gid)
}

func lookupOwner(name string) (uid, gid int, err error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup owner: %w", err)
	}
	if uid, err = strconv.Atoi(u.Uid); err != nil {
		return 0, 0, fmt.Errorf("owner %s has non-numeric uid %q", name, u.Uid)
	}
	if gid, err = strconv.Atoi(u.Gid); err != nil {
		return 0, 0, fmt.Errorf("owner %s has non-numeric gid %q", name, u.Gid)
	}
	return uid, gid, nil
}
