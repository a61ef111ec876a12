// Package cli turns a playbook into a command-line program with about,
// source, apply and log subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atomikpanda/pass/internal/audit"
	"github.com/atomikpanda/pass/internal/color"
	"github.com/atomikpanda/pass/internal/logging"
	"github.com/atomikpanda/pass/internal/playbook"
	"github.com/atomikpanda/pass/internal/story"
)

// ErrFailed is returned by the apply command when the playbook verdict is
// Fail. The narration has already explained why.
var ErrFailed = errors.New("playbook failed")

// App describes a playbook program.
type App struct {
	// Use is the command name; defaults to the executable name.
	Use string
	// Build returns the playbook for input. Its error is shown to the user,
	// so input-driven playbooks should return their help text.
	Build func(input string) (*playbook.Playbook, error)
	// Help explains the input; empty when the playbook takes none.
	Help func() (string, error)
	// Source returns the text the playbook was written in.
	Source func() (string, error)
	// Audit overrides the history file, mostly for tests.
	Audit *audit.Log
	// Prompt asks for missing input in apply --interactive.
	Prompt func(help string) (string, error)
}

// Run runs the CLI for a playbook that takes no input and exits.
func Run(pb *playbook.Playbook, source string) {
	app := &App{
		Build:  func(string) (*playbook.Playbook, error) { return pb, nil },
		Source: Text(source),
	}
	os.Exit(app.Execute(os.Args[1:]))
}

// RunWithInput runs the CLI for a playbook built from its input and exits.
func RunWithInput(build func(input string) (*playbook.Playbook, error), help, source string) {
	app := &App{Build: build, Help: Text(help), Source: Text(source)}
	os.Exit(app.Execute(os.Args[1:]))
}

// Text adapts a constant for App.Help and App.Source.
func Text(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

// Execute runs the command tree on args and returns the exit code.
func (a *App) Execute(args []string) int {
	return Exec(a.Command(), args)
}

// Exec runs root on args and returns the exit code: 0 on success, 1 when the
// playbook failed or the command could not run.
func Exec(root *cobra.Command, args []string) int {
	color.Init()
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFailed):
		return 1
	default:
		fmt.Fprintln(root.ErrOrStderr(), color.BoldRed("Error:"), err)
		return 1
	}
}

// Command builds the cobra command tree. Callers may add flags and
// subcommands before executing it.
func (a *App) Command() *cobra.Command {
	use := a.Use
	if use == "" {
		use = filepath.Base(os.Args[0])
	}
	var logLevel string
	root := &cobra.Command{
		Use:   use,
		Short: "Apply a playbook to this host",
		Long: use + ` converges this host to the state its playbook describes.
Instructions already in place are skipped, so it is safe to run again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "diagnostic log level (debug, info, warn, error); PASS_LOG_LEVEL overrides")

	root.AddCommand(
		a.aboutCmd(),
		a.sourceCmd(),
		a.applyCmd(),
		a.logCmd(),
	)
	return root
}

func (a *App) help() (string, error) {
	if a.Help == nil {
		return "", nil
	}
	return a.Help()
}

// --- about -------------------------------------------------------------------

func (a *App) aboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about [input]",
		Short: "Show information about the playbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := firstArg(args)
			help, err := a.help()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if input == "" && help != "" {
				fmt.Fprintln(out, help)
				return nil
			}
			pb, err := a.Build(input)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# Playbook: %s\n\n%s\n", pb.Name(), pb.Description())
			return nil
		},
	}
}

// --- source ------------------------------------------------------------------

func (a *App) sourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Show the source of the playbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.Source == nil {
				return errors.New("source is not available")
			}
			src, err := a.Source()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), src)
			return nil
		},
	}
}

// --- apply -------------------------------------------------------------------

func (a *App) applyCmd() *cobra.Command {
	var interactive, noAudit bool

	cmd := &cobra.Command{
		Use:   "apply [input]",
		Short: "Apply the playbook",
		Example: `  hello-world apply
  https-webserver apply email=me@example.com,domain=example.com
  https-webserver apply --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := firstArg(args)
			if input == "" && interactive {
				var err error
				if input, err = a.promptInput(); err != nil {
					return err
				}
			}
			pb, err := a.Build(input)
			if err != nil {
				return err
			}

			reporters := []playbook.Reporter{story.New(cmd.OutOrStdout())}
			if !noAudit {
				if rec := a.recorder(pb.Name()); rec != nil {
					reporters = append(reporters, rec)
				}
			}
			log.Debug().Str("playbook", pb.Name()).Msg("applying")
			if !pb.Apply(playbook.Tee(reporters...)).OK() {
				return ErrFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for the input when it is not given")
	cmd.Flags().BoolVar(&noAudit, "no-audit", false, "do not record the outcome in the history log")
	return cmd
}

func (a *App) promptInput() (string, error) {
	help, err := a.help()
	if err != nil || help == "" {
		return "", err
	}
	prompt := a.Prompt
	if prompt == nil {
		prompt = Prompt
	}
	input, err := prompt(help)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func (a *App) history() (audit.Log, error) {
	if a.Audit != nil {
		return *a.Audit, nil
	}
	return audit.Default()
}

func (a *App) recorder(name string) playbook.Reporter {
	l, err := a.history()
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		return nil
	}
	return audit.NewRecorder(l, name)
}

// --- log ---------------------------------------------------------------------

func (a *App) logCmd() *cobra.Command {
	var playbookFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the history of applied playbooks",
		Example: `  pass log
  pass log --playbook hello
  pass log --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.history()
			if err != nil {
				return err
			}
			entries, err := l.Read(playbookFilter, limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			printLog(cmd.OutOrStdout(), l.Path, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&playbookFilter, "playbook", "", "only show entries of this playbook")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}

func printLog(w io.Writer, path string, entries []audit.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(no log entries)")
		return
	}
	fmt.Fprintln(w, color.Bold(fmt.Sprintf("%-20s  %-24s  %-8s  %s", "TIME", "PLAYBOOK", "OUTCOME", "INSTRUCTION")))
	fmt.Fprintln(w, color.Dim(strings.Repeat("-", 80)))
	for _, e := range entries {
		outcome := fmt.Sprintf("%-8s", e.Outcome)
		switch playbook.Outcome(e.Outcome) {
		case playbook.Applied:
			outcome = color.Green(outcome)
		case playbook.Failed:
			outcome = color.BoldRed(outcome)
		case playbook.Skipped:
			outcome = color.Dim(outcome)
		}
		fmt.Fprintf(w, "%-20s  %-24s  %s  %s\n", e.Time.Local().Format(time.DateTime), e.Playbook, outcome, e.Instruction)
	}
	fmt.Fprintf(w, "\nlog: %s\n", path)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
