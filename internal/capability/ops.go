package capability

import "strings"

type namedCheck struct {
	name  string
	check Check
}

// NamedCheck overrides the display name of c. Evaluation is delegated
// unchanged, including Undetermined verdicts.
func NamedCheck(name string, c Check) Prober {
	return namedCheck{name: name, check: c}
}

func (n namedCheck) Name() string   { return n.name }
func (n namedCheck) Yes() bool      { return n.Probe() == Yes }
func (n namedCheck) Probe() Verdict { return Evaluate(n.check) }

type namedAction struct {
	name   string
	action Action
}

// NamedAction overrides the display name of a.
func NamedAction(name string, a Action) Action {
	return namedAction{name: name, action: a}
}

func (n namedAction) Name() string { return n.name }
func (n namedAction) Run() Result  { return n.action.Run() }

type andOp []Check

// And is met when every check is met. An empty list is vacuously met.
// Evaluation stops at the first check that is not Yes, and that check's
// verdict is the result.
func And(checks ...Check) Prober {
	return andOp(checks)
}

func (op andOp) Name() string { return joinNames("AndOp", []Check(op), " AND ") }
func (op andOp) Yes() bool    { return op.Probe() == Yes }

func (op andOp) Probe() Verdict {
	for _, c := range op {
		if v := Evaluate(c); v != Yes {
			return v
		}
	}
	return Yes
}

type orOp []Check

// Or is met when any check is met. An empty list is vacuously met.
// Evaluation stops at the first check that is met.
func Or(checks ...Check) Prober {
	return orOp(checks)
}

func (op orOp) Name() string { return joinNames("OrOp", []Check(op), " OR ") }
func (op orOp) Yes() bool    { return op.Probe() == Yes }

func (op orOp) Probe() Verdict {
	if len(op) == 0 {
		return Yes
	}
	verdict := No
	for _, c := range op {
		switch Evaluate(c) {
		case Yes:
			return Yes
		case Undetermined:
			verdict = Undetermined
		}
	}
	return verdict
}

type notOp struct {
	check Check
}

// Not negates c.
//
// Not is unsafe on checks whose false means "could not be determined": an
// unreadable file makes Not(IsFile(path)) report true.
func Not(c Check) Check {
	return notOp{check: c}
}

func (op notOp) Name() string { return "NOT " + op.check.Name() }
func (op notOp) Yes() bool    { return !op.check.Yes() }

type many []Action

// Many runs actions in order and stops at the first Fail. An empty list
// succeeds.
func Many(actions ...Action) Action {
	return many(actions)
}

func (m many) Name() string {
	if len(m) == 0 {
		return "Many"
	}
	names := make([]string, len(m))
	for i, a := range m {
		names[i] = a.Name()
	}
	return strings.Join(names, ", ")
}

func (m many) Run() Result {
	for _, a := range m {
		if a.Run() == Fail {
			return Fail
		}
	}
	return Ok
}

type invert struct {
	action Action
}

// Invert maps Ok to Fail and Fail to Ok.
func Invert(a Action) Action {
	return invert{action: a}
}

func (i invert) Name() string { return "INVERT " + i.action.Name() }

func (i invert) Run() Result {
	if i.action.Run() == Ok {
		return Fail
	}
	return Ok
}

func joinNames(empty string, checks []Check, sep string) string {
	if len(checks) == 0 {
		return empty
	}
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name()
	}
	return strings.Join(names, sep)
}
