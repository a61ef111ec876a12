package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/atomikpanda/pass/internal/actions"
	"github.com/atomikpanda/pass/internal/ageutil"
	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/dgraph"
	"github.com/atomikpanda/pass/internal/dircontext"
	"github.com/atomikpanda/pass/internal/pattern"
	"github.com/atomikpanda/pass/internal/platform"
	"github.com/atomikpanda/pass/internal/playbook"
)

// Key returns the age key of f with the PASS_AGE_* environment applied, or
// nil when none is configured.
func (f *File) Key() *ageutil.Key {
	return f.Age.key()
}

// Key returns the age key of the playbook, like File.Key.
func (h *Header) Key() *ageutil.Key {
	return h.Age.key()
}

func (a *AgeConfig) key() *ageutil.Key {
	var k *ageutil.Key
	if a != nil {
		k = &ageutil.Key{
			IdentityFile: platform.ExpandPath(a.Identity),
			Passphrase:   a.Passphrase,
		}
	}
	return ageutil.FromEnv(k)
}

// Graph returns the dependency graph f refers to.
func (f *File) Graph() dgraph.Graph {
	g := dgraph.Default()
	if f.DGraph != nil {
		if f.DGraph.Root != "" {
			g.Root = platform.ExpandPath(f.DGraph.Root)
		}
		if f.DGraph.Owner != "" {
			g.Owner = f.DGraph.Owner
		}
	}
	return g
}

// Playbook builds the playbook f declares.
func (f *File) Playbook() (*playbook.Playbook, error) {
	b := builder{key: f.Key(), graph: f.Graph(), dir: f.dir}

	env, err := b.checks(f.Env)
	if err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	instructions := make([]playbook.Instruction, 0, len(f.Instructions))
	for i, spec := range f.Instructions {
		in, err := b.instruction(spec)
		if err != nil {
			return nil, fmt.Errorf("instructions[%d]: %w", i, err)
		}
		instructions = append(instructions, in)
	}
	return playbook.New(f.Name, f.Description, env, instructions...), nil
}

type builder struct {
	key   *ageutil.Key
	graph dgraph.Graph
	dir   string
}

func (b builder) instruction(spec Instruction) (playbook.Instruction, error) {
	env, err := b.checks(spec.Env)
	if err != nil {
		return playbook.Instruction{}, fmt.Errorf("env: %w", err)
	}
	confirm, err := b.checks(spec.Confirm)
	if err != nil {
		return playbook.Instruction{}, fmt.Errorf("confirm: %w", err)
	}

	var in playbook.Instruction
	if spec.MarkApplied != "" {
		in = b.graph.MarkApplied(spec.MarkApplied)
		if spec.Name != "" {
			in = playbook.Named(spec.Name, in.Action()).WithEnv(in.EnvChecks()...).Confirm(in.ConfirmChecks()...)
		}
	} else {
		action, err := b.action(*spec.Action)
		if err != nil {
			return playbook.Instruction{}, fmt.Errorf("action: %w", err)
		}
		if spec.Name != "" {
			in = playbook.Named(spec.Name, action)
		} else {
			in = playbook.Step(action)
		}
	}
	return in.WithEnv(append(in.EnvChecks(), env...)...).Confirm(append(in.ConfirmChecks(), confirm...)...), nil
}

func (b builder) checks(specs []CheckSpec) ([]capability.Check, error) {
	out := make([]capability.Check, 0, len(specs))
	for i, spec := range specs {
		c, err := b.check(spec)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (b builder) check(spec CheckSpec) (capability.Check, error) {
	c, err := b.checkKind(spec)
	if err != nil {
		return nil, err
	}
	if spec.Dir != "" {
		c = dircontext.Dir(platform.ExpandPath(spec.Dir)).Check(c)
	}
	if spec.Name != "" {
		c = capability.NamedCheck(spec.Name, c)
	}
	return c, nil
}

func (b builder) checkKind(spec CheckSpec) (capability.Check, error) {
	switch spec.Type() {
	case "is_file":
		return checks.IsFile(platform.ExpandPath(spec.IsFile)), nil
	case "is_dir":
		return checks.IsDir(platform.ExpandPath(spec.IsDir)), nil
	case "path_exists":
		return checks.PathExists(platform.ExpandPath(spec.PathExists)), nil
	case "user_is_root":
		return checks.UserIsRoot(), nil
	case "user_is":
		return checks.UserIs(spec.UserIs), nil
	case "user_exists":
		return checks.UserExists(spec.UserExists), nil
	case "os":
		return checks.IsOS(spec.OS), nil
	case "tag":
		return checks.HasTag(spec.Tag), nil
	case "file_contains":
		m := spec.FileContains
		p, err := patternOf(m.Text, m.Regex)
		if err != nil {
			return nil, err
		}
		path := platform.ExpandPath(m.Path)
		if m.Once {
			return checks.FileContainsOnce(path, p), nil
		}
		return checks.FileContains(path, p), nil
	case "command_succeeds":
		return checks.CommandSucceeds(spec.CommandSucceeds...), nil
	case "stdout":
		return outputCheck(spec.Stdout, checks.StdoutContains, checks.StdoutContainsOnce)
	case "stderr":
		return outputCheck(spec.Stderr, checks.StderrContains, checks.StderrContainsOnce)
	case "service_status":
		return checks.ServiceStatusIs(spec.ServiceStatus.Name, spec.ServiceStatus.Status), nil
	case "service_enabled":
		return checks.ServiceIsEnabled(spec.ServiceEnabled), nil
	case "package_installed":
		return checks.PackageInstalled(orApt(spec.PackageInstalled.Manager), spec.PackageInstalled.Name), nil
	case "applied":
		return b.graph.IsApplied(spec.Applied), nil
	case "dgraph":
		return b.graph.IsSupported(), nil
	case "all":
		subs, err := b.checks(spec.All)
		if err != nil {
			return nil, fmt.Errorf("all%w", err)
		}
		return capability.And(subs...), nil
	case "any":
		subs, err := b.checks(spec.Any)
		if err != nil {
			return nil, fmt.Errorf("any%w", err)
		}
		return capability.Or(subs...), nil
	case "not":
		sub, err := b.check(*spec.Not)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return capability.Not(sub), nil
	default:
		return nil, fmt.Errorf("check has no kind")
	}
}

type outputFunc func(pattern.Pattern, ...string) capability.Prober

func outputCheck(spec *OutputSpec, contains, once outputFunc) (capability.Check, error) {
	p, err := patternOf(spec.Text, spec.Regex)
	if err != nil {
		return nil, err
	}
	if spec.Once {
		return once(p, spec.Command...), nil
	}
	return contains(p, spec.Command...), nil
}

func (b builder) action(spec ActionSpec) (capability.Action, error) {
	a, err := b.actionKind(spec)
	if err != nil {
		return nil, err
	}
	if spec.Dir != "" {
		a = dircontext.Dir(platform.ExpandPath(spec.Dir)).Action(a)
	}
	if spec.Name != "" {
		a = capability.NamedAction(spec.Name, a)
	}
	return a, nil
}

func (b builder) actionKind(spec ActionSpec) (capability.Action, error) {
	switch spec.Type() {
	case "write_file":
		w := spec.WriteFile
		path := platform.ExpandPath(w.Path)
		if w.Mode == "" && w.Owner == "" {
			return actions.WriteFile(path, []byte(w.Content)), nil
		}
		perm, err := w.perm(0o644)
		if err != nil {
			return nil, err
		}
		return actions.WriteFilePerm(path, []byte(w.Content), perm), nil
	case "write_secret":
		s := spec.WriteSecret
		perm, err := s.perm(0o600)
		if err != nil {
			return nil, err
		}
		return actions.WriteSecretFile(b.resolve(s.Source), platform.ExpandPath(s.Path), b.key, perm), nil
	case "create_dir":
		d := spec.CreateDir
		path := platform.ExpandPath(d.Path)
		if d.Mode == "" && d.Owner == "" {
			return actions.CreateDir(path), nil
		}
		perm, err := d.perm(0o755)
		if err != nil {
			return nil, err
		}
		return actions.CreateDirPerm(path, perm), nil
	case "delete":
		return actions.DeleteFile(platform.ExpandPath(spec.Delete)), nil
	case "rename":
		return actions.Rename(platform.ExpandPath(spec.Rename.From), platform.ExpandPath(spec.Rename.To)), nil
	case "set_permissions":
		s := spec.SetPermissions
		if s.Mode == "" {
			return nil, fmt.Errorf("set_permissions %s: mode is required", s.Path)
		}
		perm, err := s.perm(0)
		if err != nil {
			return nil, err
		}
		return actions.SetPermissions(platform.ExpandPath(s.Path), perm), nil
	case "replace_once":
		r := spec.ReplaceOnce
		p, err := patternOf(r.Text, r.Regex)
		if err != nil {
			return nil, err
		}
		return actions.ReplaceInFileOnce(platform.ExpandPath(r.Path), p, []byte(r.With)), nil
	case "command":
		return actions.Command(spec.Command...), nil
	case "script":
		return actions.Script(spec.Script), nil
	case "install":
		return actions.InstallPackages(orApt(spec.Install.Manager), spec.Install.Packages...), nil
	case "service":
		return actions.ServiceCommand(spec.Service.Command, spec.Service.Name), nil
	case "many":
		subs := make([]capability.Action, 0, len(spec.Many))
		for i, s := range spec.Many {
			a, err := b.action(s)
			if err != nil {
				return nil, fmt.Errorf("many[%d]: %w", i, err)
			}
			subs = append(subs, a)
		}
		return capability.Many(subs...), nil
	case "invert":
		sub, err := b.action(*spec.Invert)
		if err != nil {
			return nil, fmt.Errorf("invert: %w", err)
		}
		return capability.Invert(sub), nil
	default:
		return nil, fmt.Errorf("action has no kind")
	}
}

// resolve expands path and makes it relative to the playbook file.
func (b builder) resolve(path string) string {
	path = platform.ExpandPath(path)
	if filepath.IsAbs(path) || b.dir == "" {
		return path
	}
	return filepath.Join(b.dir, path)
}

func (p PermSpec) perm(defaultMode os.FileMode) (actions.PathPermissions, error) {
	mode := defaultMode
	if p.Mode != "" {
		v, err := strconv.ParseUint(p.Mode, 8, 32)
		if err != nil {
			return actions.PathPermissions{}, fmt.Errorf("invalid mode %q: %w", p.Mode, err)
		}
		mode = os.FileMode(v)
	}
	return actions.Perm(mode, p.Owner), nil
}

func patternOf(text, regex string) (pattern.Pattern, error) {
	switch {
	case text != "" && regex != "":
		return pattern.Pattern{}, fmt.Errorf("both text and regex set")
	case regex != "":
		return pattern.Regex(regex)
	case text != "":
		return pattern.Text(text), nil
	default:
		return pattern.Pattern{}, fmt.Errorf("one of text or regex is required")
	}
}

func orApt(manager string) string {
	if manager == "" {
		return "apt"
	}
	return manager
}
