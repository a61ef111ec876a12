// Command hello-world creates a file with a greeting, or does nothing when the
// file already exists.
package main

import (
	_ "embed"

	"github.com/atomikpanda/pass/internal/actions"
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/cli"
	"github.com/atomikpanda/pass/internal/playbook"
)

//go:embed main.go
var source string

const filePath = "pass-example__hello_world.txt"

func helloWorld() *playbook.Playbook {
	return playbook.New(
		"Hello world",
		`This example creates file with "Hello, world!" text, if file already exists it will do nothing`,
		nil,
		playbook.Step(actions.WriteFile(filePath, []byte("Hello, world!"))).Confirm(checks.IsFile(filePath)),
	)
}

func main() {
	cli.Run(helloWorld(), source)
}
