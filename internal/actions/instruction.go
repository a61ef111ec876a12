package actions

import (
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/playbook"
)

// CreateDirIfMissing returns an instruction creating path with perm, skipped
// when path is already a directory.
func CreateDirIfMissing(path string, perm PathPermissions) playbook.Instruction {
	return playbook.Step(CreateDirPerm(path, perm)).Confirm(checks.IsDir(path))
}
