package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomikpanda/pass/internal/ageutil"
	"github.com/atomikpanda/pass/internal/cli"
	"github.com/atomikpanda/pass/internal/config"
	"github.com/atomikpanda/pass/internal/dgraph"
	"github.com/atomikpanda/pass/internal/platform"
	"github.com/atomikpanda/pass/internal/playbook"
	"github.com/atomikpanda/pass/internal/story"
	"github.com/atomikpanda/pass/internal/tags"
	"github.com/atomikpanda/pass/internal/template"
)

var playbookFile string

func main() {
	os.Exit(cli.Exec(buildRoot(), os.Args[1:]))
}

func buildRoot() *cobra.Command {
	app := &cli.App{
		Use:    "pass",
		Build:  buildPlaybook,
		Help:   playbookHelp,
		Source: playbookSource,
	}
	root := app.Command()
	root.Short = "Apply declarative playbook files to this host"
	root.Long = `pass converges this host to the state described by a YAML or TOML
playbook file. Instructions whose confirmation checks already hold are
skipped, so a playbook can be applied again after a partial failure.`

	root.PersistentFlags().StringVarP(&playbookFile, "file", "f", "playbook.yaml", "path to the playbook file (.yaml, .yml or .toml)")

	root.AddCommand(
		dgraphCmd(),
		encryptCmd(),
		platformCmd(),
		tagCmd(),
	)
	return root
}

func buildPlaybook(input string) (*playbook.Playbook, error) {
	params, err := template.ParseParams(input)
	if err != nil {
		return nil, err
	}
	f, err := config.Load(playbookFile, params)
	if err != nil {
		return nil, err
	}
	return f.Playbook()
}

func playbookHelp() (string, error) {
	h, err := config.LoadHeader(playbookFile)
	if err != nil {
		return "", err
	}
	if len(h.Params) == 0 {
		return "", nil
	}
	if h.Help != "" {
		return h.Help, nil
	}
	return fmt.Sprintf("This playbook needs the parameters %s, given as name=value,name=value.",
		strings.Join(h.Params, ", ")), nil
}

func playbookSource() (string, error) {
	data, err := os.ReadFile(playbookFile)
	if err != nil {
		return "", fmt.Errorf("read playbook: %w", err)
	}
	return string(data), nil
}

// --- dgraph ------------------------------------------------------------------

func dgraphCmd() *cobra.Command {
	g := dgraph.Default()

	cmd := &cobra.Command{
		Use:   "dgraph",
		Short: "Manage the record of applied playbooks",
	}
	cmd.PersistentFlags().StringVar(&g.Root, "root", g.Root, "directory holding the applied markers")
	cmd.PersistentFlags().StringVar(&g.Owner, "owner", g.Owner, "user owning the markers")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the applied-marker store (run once per host)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if !g.Init().Apply(story.New(cmd.OutOrStdout())).OK() {
					return cli.ErrFailed
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status <playbook>",
			Short: "Report whether a playbook has been applied",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				switch {
				case !g.IsSupported().Yes():
					fmt.Fprintf(out, "dgraph is not initialised at %s\n", g.Root)
				case g.IsApplied(args[0]).Yes():
					fmt.Fprintf(out, "%s: applied\n", args[0])
				default:
					fmt.Fprintf(out, "%s: not applied\n", args[0])
				}
				return nil
			},
		},
	)
	return cmd
}

// --- encrypt -----------------------------------------------------------------

func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a secret with the playbook's age key (writes <file>.age)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := playbookKey()
			if err != nil {
				return err
			}
			src := platform.ExpandPath(args[0])
			dst := ageutil.CiphertextPath(src)
			if dst == src {
				return fmt.Errorf("%s is already encrypted", src)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "encrypting %s -> %s\n", src, dst)
			return key.EncryptFile(src, dst)
		},
	}
}

func playbookKey() (*ageutil.Key, error) {
	var key *ageutil.Key
	if _, err := os.Stat(playbookFile); err == nil {
		h, err := config.LoadHeader(playbookFile)
		if err != nil {
			return nil, err
		}
		key = h.Key()
	} else {
		key = ageutil.FromEnv(nil)
	}
	if key == nil {
		return nil, ageutil.ErrNoKey
	}
	return key, nil
}

// --- platform ----------------------------------------------------------------

func platformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Print the detected platform",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			h := platform.Host()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "os:       %s\n", h.OS)
			fmt.Fprintf(out, "arch:     %s\n", h.Arch)
			fmt.Fprintf(out, "hostname: %s\n", h.Hostname)
		},
	}
}

// --- tag ---------------------------------------------------------------------

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the host tags playbooks can check with `tag:`",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the host tags",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := tags.Load()
				if err != nil {
					return err
				}
				for _, t := range h.Tags {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <tag>",
			Short: "Tag this host",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return tags.Add(args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <tag>",
			Short: "Remove a tag from this host",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return tags.Remove(args[0])
			},
		},
	)
	return cmd
}
