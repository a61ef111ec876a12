// Package capability defines the two contracts everything in a playbook is
// built from: a Check queries one fact, an Action performs one effect.
//
// Neither contract carries an error. A check that cannot determine its answer
// reports false; an action that fails for any reason reports Fail.
package capability

// Check is a named boolean predicate over external state. Implementations
// must not mutate the state they inspect.
type Check interface {
	// Name returns a short display name.
	Name() string
	// Yes performs the check. False means "not met" or "could not be
	// determined".
	Yes() bool
}

// Action is a named side effect with a binary outcome.
type Action interface {
	// Name returns a short display name.
	Name() string
	// Run performs the effect.
	Run() Result
}

// Result is the outcome of an Action.
type Result int

const (
	Ok Result = iota
	Fail
)

// OK reports whether r is Ok.
func (r Result) OK() bool {
	return r == Ok
}

func (r Result) String() string {
	if r == Ok {
		return "ok"
	}
	return "FAIL"
}

// ResultOf maps true to Ok and false to Fail.
func ResultOf(ok bool) Result {
	if ok {
		return Ok
	}
	return Fail
}

// Verdict is the three-valued answer of a check that can tell "no" apart from
// "could not be determined".
type Verdict int

const (
	Yes Verdict = iota
	No
	Undetermined
)

func (v Verdict) String() string {
	switch v {
	case Yes:
		return "Y"
	case No:
		return "N"
	default:
		return "?"
	}
}

// VerdictOf maps true to Yes and false to No.
func VerdictOf(yes bool) Verdict {
	if yes {
		return Yes
	}
	return No
}

// Prober is implemented by checks that can report Undetermined. Yes must
// return true exactly when Probe returns Yes.
type Prober interface {
	Check
	Probe() Verdict
}

// Evaluate runs c once, using Probe when c implements Prober.
func Evaluate(c Check) Verdict {
	if p, ok := c.(Prober); ok {
		return p.Probe()
	}
	return VerdictOf(c.Yes())
}
