package capability

import "github.com/rs/zerolog/log"

type checkFunc struct {
	name string
	fn   func() bool
}

// NewCheck adapts a name and a predicate into a Check.
func NewCheck(name string, fn func() bool) Check {
	return checkFunc{name: name, fn: fn}
}

func (c checkFunc) Name() string { return c.name }
func (c checkFunc) Yes() bool    { return c.fn() }

type probeFunc struct {
	name string
	fn   func() Verdict
}

// NewProbe adapts a name and a three-valued predicate into a Prober.
func NewProbe(name string, fn func() Verdict) Prober {
	return probeFunc{name: name, fn: fn}
}

func (c probeFunc) Name() string   { return c.name }
func (c probeFunc) Yes() bool      { return c.fn() == Yes }
func (c probeFunc) Probe() Verdict { return c.fn() }

type actionFunc struct {
	name string
	fn   func() Result
}

// NewAction adapts a name and an effect into an Action.
func NewAction(name string, fn func() Result) Action {
	return actionFunc{name: name, fn: fn}
}

func (a actionFunc) Name() string { return a.name }
func (a actionFunc) Run() Result  { return a.fn() }

// ActionFunc adapts an error-returning effect into an Action. A non-nil error
// becomes Fail; the error itself is only logged.
func ActionFunc(name string, fn func() error) Action {
	return actionFunc{name: name, fn: func() Result {
		return FromError(name, fn())
	}}
}

// FromError collapses err into a Result, logging it at debug level under the
// given capability name.
func FromError(name string, err error) Result {
	if err != nil {
		log.Debug().Err(err).Str("capability", name).Msg("action failed")
		return Fail
	}
	return Ok
}

// AlwaysYes returns a check that is always met.
func AlwaysYes() Check { return NewCheck("AlwaysYes", func() bool { return true }) }

// AlwaysNo returns a check that is never met.
func AlwaysNo() Check { return NewCheck("AlwaysNo", func() bool { return false }) }

// AlwaysOk returns an action that does nothing and succeeds.
func AlwaysOk() Action { return NewAction("AlwaysOk", func() Result { return Ok }) }

// AlwaysFail returns an action that does nothing and fails.
func AlwaysFail() Action { return NewAction("AlwaysFail", func() Result { return Fail }) }
