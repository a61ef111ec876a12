package playbook

import (
	"slices"

	"github.com/atomikpanda/pass/internal/capability"
)

// Instruction binds one action to the environment checks that must hold
// before it runs and the confirmation checks that tell whether its desired
// state is already in place.
//
// Instructions are values: every builder method returns a modified copy and
// leaves the receiver untouched.
type Instruction struct {
	action  capability.Action
	env     []capability.Check
	confirm []capability.Check
}

// Step starts an instruction wrapping action, with no checks.
func Step(action capability.Action) Instruction {
	return Instruction{action: action}
}

// Named starts an instruction wrapping action under a new display name.
func Named(name string, action capability.Action) Instruction {
	return Step(capability.NamedAction(name, action))
}

// WithEnv returns a copy of i whose environment checks are checks.
func (i Instruction) WithEnv(checks ...capability.Check) Instruction {
	i.env = slices.Clone(checks)
	return i
}

// Confirm returns a copy of i whose confirmation checks are checks.
func (i Instruction) Confirm(checks ...capability.Check) Instruction {
	i.confirm = slices.Clone(checks)
	return i
}

// Action returns the wrapped action.
func (i Instruction) Action() capability.Action {
	return i.action
}

// EnvChecks returns a copy of the environment checks.
func (i Instruction) EnvChecks() []capability.Check {
	return slices.Clone(i.env)
}

// ConfirmChecks returns a copy of the confirmation checks.
func (i Instruction) ConfirmChecks() []capability.Check {
	return slices.Clone(i.confirm)
}

// apply walks one instruction through its gates:
//
//	confirm (before) -> env -> action -> confirm (after)
//
// All-yes confirmation skips the rest; mixed confirmation fails without
// running anything.
func (i Instruction) apply(r Reporter) Outcome {
	skip := false
	ok := section(r, "pre", func() bool {
		if len(i.confirm) > 0 {
			confirmed := checklist(r, "Confirmation", func() bool {
				verdicts := evaluate(i.confirm)
				switch classify(verdicts) {
				case mixedVotes:
					reportItems(r, i.confirm, verdicts)
					r.ChecklistNote("confirmation checks should be *all yes* or *all no*")
					return false
				case allYes:
					reportItems(r, i.confirm, verdicts)
					r.ChecklistNote("action already applied, skipping")
					skip = true
				default:
					r.ChecklistTitleNote("checking all confirmations is *no*")
					reportItems(r, i.confirm, verdicts)
				}
				return true
			})
			if !confirmed {
				return false
			}
		}
		if skip || len(i.env) == 0 {
			return true
		}
		return checklist(r, "Environment", func() bool {
			return checkAll(r, i.env)
		})
	})
	switch {
	case !ok:
		return Failed
	case skip:
		return Skipped
	}

	r.EnterProcess("apply")
	ran := i.action.Run() == capability.Ok
	r.ExitProcess(ran)
	if !ran {
		return Failed
	}

	ok = section(r, "post", func() bool {
		if len(i.confirm) == 0 {
			return true
		}
		return checklist(r, "Confirmation", func() bool {
			return checkAll(r, i.confirm)
		})
	})
	if !ok {
		return Failed
	}
	return Applied
}

type votes int

const (
	allYes votes = iota
	allNo
	mixedVotes
)

// classify collapses Undetermined into No before counting.
func classify(verdicts []capability.Verdict) votes {
	yes := 0
	for _, v := range verdicts {
		if v == capability.Yes {
			yes++
		}
	}
	switch yes {
	case len(verdicts):
		return allYes
	case 0:
		return allNo
	default:
		return mixedVotes
	}
}
