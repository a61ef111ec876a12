package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompt asks for the playbook input on the terminal, showing help.
func Prompt(help string) (string, error) {
	var input string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Playbook input").
			Description(help).
			Value(&input).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("input is required")
				}
				return nil
			}),
	)).Run()
	return input, err
}
