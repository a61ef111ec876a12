package actions

import (
	"fmt"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/process"
)

// Command runs cmd and succeeds when it exits with status 0.
func Command(cmd ...string) capability.Action {
	return runAction(fmt.Sprintf("run `%s`", process.String(cmd)), cmd)
}

// Script runs script through the platform shell.
func Script(script string) capability.Action {
	return runAction(fmt.Sprintf("run script `%s`", script), process.Shell(script))
}

func runAction(name string, cmd []string) capability.Action {
	return capability.NewAction(name, func() capability.Result {
		return capability.ResultOf(process.Run(cmd).OK())
	})
}
