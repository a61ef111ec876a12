// Package playbook holds the declarative playbook tree and the convergence
// engine that applies it.
//
// Apply walks the tree once, strictly in order, on the calling goroutine. The
// first failed gate anywhere stops the walk; nothing applied before it is
// undone. Instructions whose confirmation checks already hold are skipped
// without side effects, so re-applying after a partial failure retries only
// the instruction that failed.
package playbook

import (
	"fmt"
	"slices"

	"github.com/atomikpanda/pass/internal/capability"
)

const (
	// DefaultName replaces an empty playbook name.
	DefaultName = "?without_name?"
	// DefaultDescription replaces an empty playbook description.
	DefaultDescription = "?Without description?"
)

// Playbook is a named, ordered list of instructions guarded by global
// environment checks.
type Playbook struct {
	name         string
	description  string
	env          []capability.Check
	instructions []Instruction
}

// New builds a playbook. Empty name and description are replaced by
// placeholders.
func New(name, description string, env []capability.Check, instructions ...Instruction) *Playbook {
	if name == "" {
		name = DefaultName
	}
	if description == "" {
		description = DefaultDescription
	}
	return &Playbook{
		name:         name,
		description:  description,
		env:          slices.Clone(env),
		instructions: slices.Clone(instructions),
	}
}

// Name returns the short playbook name, usable as a unique id.
func (p *Playbook) Name() string { return p.name }

// Description explains the purpose of the playbook to the user.
func (p *Playbook) Description() string { return p.description }

// EnvChecks returns a copy of the playbook-level environment checks.
func (p *Playbook) EnvChecks() []capability.Check { return slices.Clone(p.env) }

// Instructions returns a copy of the instruction list.
func (p *Playbook) Instructions() []Instruction { return slices.Clone(p.instructions) }

// Apply converges the host toward the state described by p and narrates the
// walk to r, which may be nil.
func (p *Playbook) Apply(r Reporter) capability.Result {
	if r == nil {
		r = Discard{}
	}
	r.PlaybookHeader(p.description)
	ok := section(r, "Playbook", func() bool {
		if len(p.env) > 0 {
			met := checklist(r, "Environment", func() bool {
				return checkAll(r, p.env)
			})
			if !met {
				return false
			}
		}
		if len(p.instructions) == 0 {
			return true
		}
		return section(r, "Actions", func() bool {
			for i, in := range p.instructions {
				name := in.action.Name()
				var outcome Outcome
				section(r, fmt.Sprintf("%d.%s", i+1, name), func() bool {
					outcome = in.apply(r)
					return outcome != Failed
				})
				r.InstructionResult(i+1, name, outcome)
				if outcome == Failed {
					return false
				}
			}
			return true
		})
	})
	r.PlaybookResult(p.description, ok)
	return capability.ResultOf(ok)
}

func section(r Reporter, name string, fn func() bool) bool {
	r.EnterSection(name)
	ok := fn()
	r.ExitSection(ok)
	return ok
}

func checklist(r Reporter, title string, fn func() bool) bool {
	r.EnterChecklist(title)
	ok := fn()
	r.ExitChecklist(ok)
	return ok
}

// checkAll evaluates and reports every check, even after one fails, and
// reports whether all of them were met.
func checkAll(r Reporter, checks []capability.Check) bool {
	verdicts := evaluate(checks)
	reportItems(r, checks, verdicts)
	return classify(verdicts) == allYes
}

func evaluate(checks []capability.Check) []capability.Verdict {
	verdicts := make([]capability.Verdict, len(checks))
	for i, c := range checks {
		verdicts[i] = capability.Evaluate(c)
	}
	return verdicts
}

func reportItems(r Reporter, checks []capability.Check, verdicts []capability.Verdict) {
	for i, c := range checks {
		r.ChecklistItem(verdicts[i], i+1, c.Name())
	}
	for i, v := range verdicts {
		if v == capability.Undetermined {
			r.ChecklistNote(fmt.Sprintf("%d.%s could not be determined, counted as *no*", i+1, checks[i].Name()))
		}
	}
}
