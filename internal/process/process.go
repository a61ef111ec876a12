// Package process runs external commands for leaf checks and actions and
// classifies how they ended. The convergence engine never calls it directly.
package process

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExitCode classifies how a process ended.
type ExitCode int

const (
	// SuccessOnExit means the process started and exited with status 0.
	SuccessOnExit ExitCode = iota
	// ErrorOnExit means the process started and exited with a non-zero status.
	ErrorOnExit
	// FailOnStart means the process could not be started at all.
	FailOnStart
)

func (c ExitCode) String() string {
	switch c {
	case SuccessOnExit:
		return "success"
	case ErrorOnExit:
		return "error"
	default:
		return "fail-on-start"
	}
}

// Result is the outcome of Run. Stdout and Stderr are nil when the process
// failed to start.
type Result struct {
	Code   ExitCode
	Stdout []byte
	Stderr []byte
}

// OK reports whether the process exited successfully.
func (r Result) OK() bool {
	return r.Code == SuccessOnExit
}

// Run executes cmd[0] with cmd[1:] as arguments, capturing its output. It
// blocks until the process exits; there is no timeout.
func Run(cmd []string) Result {
	if len(cmd) == 0 {
		return Result{Code: FailOnStart}
	}
	c := exec.Command(cmd[0], cmd[1:]...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return Result{Code: SuccessOnExit, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Debug().Strs("cmd", cmd).Int("exit", exitErr.ExitCode()).Msg("process exited with error")
		return Result{Code: ErrorOnExit, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	}
	log.Debug().Err(err).Strs("cmd", cmd).Msg("process failed to start")
	return Result{Code: FailOnStart}
}

// Shell returns the command line that runs script through the platform shell.
func Shell(script string) []string {
	if runtime.GOOS == "windows" {
		return []string{"powershell", "-Command", script}
	}
	return []string{"sh", "-c", script}
}

// String renders cmd for display.
func String(cmd []string) string {
	return strings.Join(cmd, " ")
}
