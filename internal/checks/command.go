package checks

import (
	"fmt"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/pattern"
	"github.com/atomikpanda/pass/internal/process"
)

// CommandSucceeds is met when cmd starts and exits with status 0. A command
// that cannot be started is Undetermined.
func CommandSucceeds(cmd ...string) capability.Prober {
	return capability.NewProbe(fmt.Sprintf("command succeeds `%s`", process.String(cmd)), func() capability.Verdict {
		res := process.Run(cmd)
		if res.Code == process.FailOnStart {
			return capability.Undetermined
		}
		return capability.VerdictOf(res.OK())
	})
}

// StdoutContains is met when cmd succeeds and its stdout contains p.
func StdoutContains(p pattern.Pattern, cmd ...string) capability.Prober {
	return outputProbe(fmt.Sprintf("stdout of `%s` contains %s", process.String(cmd), p), cmd, stdout, p.Contains)
}

// StdoutContainsOnce is met when cmd succeeds and p occurs in its stdout
// exactly once.
func StdoutContainsOnce(p pattern.Pattern, cmd ...string) capability.Prober {
	return outputProbe(fmt.Sprintf("stdout of `%s` contains once %s", process.String(cmd), p), cmd, stdout, p.ContainsOnce)
}

// StderrContains is met when cmd succeeds and its stderr contains p.
func StderrContains(p pattern.Pattern, cmd ...string) capability.Prober {
	return outputProbe(fmt.Sprintf("stderr of `%s` contains %s", process.String(cmd), p), cmd, stderr, p.Contains)
}

// StderrContainsOnce is met when cmd succeeds and p occurs in its stderr
// exactly once.
func StderrContainsOnce(p pattern.Pattern, cmd ...string) capability.Prober {
	return outputProbe(fmt.Sprintf("stderr of `%s` contains once %s", process.String(cmd), p), cmd, stderr, p.ContainsOnce)
}

func stdout(r process.Result) []byte { return r.Stdout }
func stderr(r process.Result) []byte { return r.Stderr }

func outputProbe(name string, cmd []string, stream func(process.Result) []byte, match func([]byte) bool) capability.Prober {
	return capability.NewProbe(name, func() capability.Verdict {
		res := process.Run(cmd)
		switch res.Code {
		case process.FailOnStart:
			return capability.Undetermined
		case process.ErrorOnExit:
			return capability.No
		}
		return capability.VerdictOf(match(stream(res)))
	})
}
