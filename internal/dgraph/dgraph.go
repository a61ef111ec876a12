// Package dgraph records which playbooks have been applied to a host so that
// other playbooks can require them in their environment checks.
//
// A playbook is applied when its marker file <Root>/applied/<name> exists.
// Markers are created by the MarkApplied instruction, usually the last
// instruction of the playbook being recorded.
package dgraph

import (
	"fmt"
	"path/filepath"

	"github.com/atomikpanda/pass/internal/actions"
	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/playbook"
)

const (
	DefaultRoot  = "/srv/pass"
	DefaultOwner = "root"
)

// Graph locates the marker store.
type Graph struct {
	Root  string
	Owner string
}

// Default returns the Graph at /srv/pass owned by root.
func Default() Graph {
	return Graph{Root: DefaultRoot, Owner: DefaultOwner}
}

func (g Graph) withDefaults() Graph {
	if g.Root == "" {
		g.Root = DefaultRoot
	}
	if g.Owner == "" {
		g.Owner = DefaultOwner
	}
	return g
}

// AppliedDir returns the directory holding the markers.
func (g Graph) AppliedDir() string {
	return filepath.Join(g.withDefaults().Root, "applied")
}

// MarkerPath returns the marker file of the playbook called name.
func (g Graph) MarkerPath(name string) string {
	return filepath.Join(g.AppliedDir(), name)
}

// Init returns the playbook that creates the marker store. It must run, as
// the owner, before any other function of the graph is useful.
func (g Graph) Init() *playbook.Playbook {
	g = g.withDefaults()
	perm := actions.Perm(0o775, g.Owner)
	return playbook.New("Init dgraph", "Init dependency graph",
		[]capability.Check{checks.UserIs(g.Owner), checks.IsDir(filepath.Dir(g.Root))},
		actions.CreateDirIfMissing(g.Root, perm),
		actions.CreateDirIfMissing(g.AppliedDir(), perm),
	)
}

// IsSupported is met when the marker store exists.
func (g Graph) IsSupported() capability.Check {
	return capability.NamedCheck("Is dgraph", checks.IsDir(g.AppliedDir()))
}

// IsApplied is met when the playbook called name has been marked applied.
func (g Graph) IsApplied(name string) capability.Check {
	return capability.NamedCheck(fmt.Sprintf("Playbook `%s` applied", name), checks.IsFile(g.MarkerPath(name)))
}

// MarkApplied returns the instruction recording the playbook called name as
// applied. The marker is empty and read-only.
func (g Graph) MarkApplied(name string) playbook.Instruction {
	g = g.withDefaults()
	marker := g.MarkerPath(name)
	return playbook.Step(actions.WriteFilePerm(marker, nil, actions.Perm(0o444, g.Owner))).
		WithEnv(
			checks.UserIs(g.Owner),
			capability.NamedCheck("Dependency graph is supported", checks.IsDir(g.AppliedDir())),
		).
		Confirm(checks.IsFile(marker))
}
