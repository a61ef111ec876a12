// Package dircontext runs a check or action with the process working
// directory switched, restoring it afterwards.
//
// The working directory is process-wide; wrapped capabilities must not run
// concurrently with anything that depends on it.
package dircontext

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/atomikpanda/pass/internal/capability"
)

// Context is a directory to run capabilities in.
type Context struct {
	path string
}

// Dir returns a Context for path.
func Dir(path string) Context {
	return Context{path: path}
}

// Path returns the directory capabilities run in.
func (c Context) Path() string {
	return c.path
}

// Check wraps chk, keeping its Undetermined verdicts. The wrapped check is
// Undetermined when the directory cannot be entered or the previous one
// cannot be restored.
func (c Context) Check(chk capability.Check) capability.Prober {
	return capability.NewProbe(fmt.Sprintf("in %s: %s", c.path, chk.Name()), func() capability.Verdict {
		verdict := capability.Undetermined
		if err := c.within(func() { verdict = capability.Evaluate(chk) }); err != nil {
			return capability.Undetermined
		}
		return verdict
	})
}

// Action wraps a. The wrapped action fails when the directory cannot be
// entered or the previous one cannot be restored.
func (c Context) Action(a capability.Action) capability.Action {
	return capability.NewAction(fmt.Sprintf("in %s: %s", c.path, a.Name()), func() capability.Result {
		res := capability.Fail
		if err := c.within(func() { res = a.Run() }); err != nil {
			return capability.Fail
		}
		return res
	})
}

// within runs fn inside the directory. The previous directory is restored
// even when fn panics.
func (c Context) within(fn func()) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return c.logged(err)
	}
	if err := os.Chdir(c.path); err != nil {
		return c.logged(err)
	}
	defer func() {
		if rerr := os.Chdir(prev); rerr != nil && err == nil {
			err = c.logged(rerr)
		}
	}()
	fn()
	return nil
}

func (c Context) logged(err error) error {
	log.Debug().Err(err).Str("dir", c.path).Msg("dir context")
	return err
}
