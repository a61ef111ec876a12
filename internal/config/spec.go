package config

import "fmt"

// CheckSpec declares one check. Exactly one kind field must be set; Name
// renames the check and Dir evaluates it inside a directory.
type CheckSpec struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
	Dir  string `yaml:"dir,omitempty" toml:"dir,omitempty"`

	IsFile           string        `yaml:"is_file,omitempty" toml:"is_file,omitempty"`
	IsDir            string        `yaml:"is_dir,omitempty" toml:"is_dir,omitempty"`
	PathExists       string        `yaml:"path_exists,omitempty" toml:"path_exists,omitempty"`
	UserIsRoot       bool          `yaml:"user_is_root,omitempty" toml:"user_is_root,omitempty"`
	UserIs           string        `yaml:"user_is,omitempty" toml:"user_is,omitempty"`
	UserExists       string        `yaml:"user_exists,omitempty" toml:"user_exists,omitempty"`
	OS               string        `yaml:"os,omitempty" toml:"os,omitempty"`
	Tag              string        `yaml:"tag,omitempty" toml:"tag,omitempty"`
	FileContains     *MatchSpec    `yaml:"file_contains,omitempty" toml:"file_contains,omitempty"`
	CommandSucceeds  []string      `yaml:"command_succeeds,omitempty" toml:"command_succeeds,omitempty"`
	Stdout           *OutputSpec   `yaml:"stdout,omitempty" toml:"stdout,omitempty"`
	Stderr           *OutputSpec   `yaml:"stderr,omitempty" toml:"stderr,omitempty"`
	ServiceStatus    *ServiceState `yaml:"service_status,omitempty" toml:"service_status,omitempty"`
	ServiceEnabled   string        `yaml:"service_enabled,omitempty" toml:"service_enabled,omitempty"`
	PackageInstalled *PackageSpec  `yaml:"package_installed,omitempty" toml:"package_installed,omitempty"`
	Applied          string        `yaml:"applied,omitempty" toml:"applied,omitempty"`
	DGraph           bool          `yaml:"dgraph,omitempty" toml:"dgraph,omitempty"`

	All []CheckSpec `yaml:"all,omitempty" toml:"all,omitempty"`
	Any []CheckSpec `yaml:"any,omitempty" toml:"any,omitempty"`
	Not *CheckSpec  `yaml:"not,omitempty" toml:"not,omitempty"`
}

// MatchSpec is a pattern searched in a file. Exactly one of Text or Regex
// must be set; Once requires exactly one occurrence.
type MatchSpec struct {
	Path  string `yaml:"path" toml:"path"`
	Text  string `yaml:"text,omitempty" toml:"text,omitempty"`
	Regex string `yaml:"regex,omitempty" toml:"regex,omitempty"`
	Once  bool   `yaml:"once,omitempty" toml:"once,omitempty"`
}

// OutputSpec is a pattern searched in the output of a successful command.
type OutputSpec struct {
	Command []string `yaml:"command" toml:"command"`
	Text    string   `yaml:"text,omitempty" toml:"text,omitempty"`
	Regex   string   `yaml:"regex,omitempty" toml:"regex,omitempty"`
	Once    bool     `yaml:"once,omitempty" toml:"once,omitempty"`
}

// ServiceState is a systemd unit and the state it should be in.
type ServiceState struct {
	Name   string `yaml:"name" toml:"name"`
	Status string `yaml:"status" toml:"status"`
}

// PackageSpec names a package of a package manager. Manager defaults to apt.
type PackageSpec struct {
	Manager string `yaml:"manager,omitempty" toml:"manager,omitempty"`
	Name    string `yaml:"name" toml:"name"`
}

// Type returns the kind of check c declares, "unknown" when none is set.
func (c CheckSpec) Type() string {
	if kinds := c.kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return "unknown"
}

func (c CheckSpec) kinds() []string {
	var kinds []string
	add := func(set bool, kind string) {
		if set {
			kinds = append(kinds, kind)
		}
	}
	add(c.IsFile != "", "is_file")
	add(c.IsDir != "", "is_dir")
	add(c.PathExists != "", "path_exists")
	add(c.UserIsRoot, "user_is_root")
	add(c.UserIs != "", "user_is")
	add(c.UserExists != "", "user_exists")
	add(c.OS != "", "os")
	add(c.Tag != "", "tag")
	add(c.FileContains != nil, "file_contains")
	add(c.CommandSucceeds != nil, "command_succeeds")
	add(c.Stdout != nil, "stdout")
	add(c.Stderr != nil, "stderr")
	add(c.ServiceStatus != nil, "service_status")
	add(c.ServiceEnabled != "", "service_enabled")
	add(c.PackageInstalled != nil, "package_installed")
	add(c.Applied != "", "applied")
	add(c.DGraph, "dgraph")
	add(c.All != nil, "all")
	add(c.Any != nil, "any")
	add(c.Not != nil, "not")
	return kinds
}

func (c CheckSpec) validate(where string) error {
	if err := validateKinds(where, c.kinds()); err != nil {
		return err
	}
	for i, sub := range c.All {
		if err := sub.validate(fmt.Sprintf("%s.all[%d]", where, i)); err != nil {
			return err
		}
	}
	for i, sub := range c.Any {
		if err := sub.validate(fmt.Sprintf("%s.any[%d]", where, i)); err != nil {
			return err
		}
	}
	if c.Not != nil {
		return c.Not.validate(where + ".not")
	}
	return nil
}

// ActionSpec declares one action. Exactly one kind field must be set; Name
// renames the action and Dir runs it inside a directory.
type ActionSpec struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
	Dir  string `yaml:"dir,omitempty" toml:"dir,omitempty"`

	WriteFile      *WriteSpec   `yaml:"write_file,omitempty" toml:"write_file,omitempty"`
	WriteSecret    *SecretSpec  `yaml:"write_secret,omitempty" toml:"write_secret,omitempty"`
	CreateDir      *PermSpec    `yaml:"create_dir,omitempty" toml:"create_dir,omitempty"`
	Delete         string       `yaml:"delete,omitempty" toml:"delete,omitempty"`
	Rename         *RenameSpec  `yaml:"rename,omitempty" toml:"rename,omitempty"`
	SetPermissions *PermSpec    `yaml:"set_permissions,omitempty" toml:"set_permissions,omitempty"`
	ReplaceOnce    *ReplaceSpec `yaml:"replace_once,omitempty" toml:"replace_once,omitempty"`
	Command        []string     `yaml:"command,omitempty" toml:"command,omitempty"`
	Script         string       `yaml:"script,omitempty" toml:"script,omitempty"`
	Install        *InstallSpec `yaml:"install,omitempty" toml:"install,omitempty"`
	Service        *ServiceCall `yaml:"service,omitempty" toml:"service,omitempty"`

	Many   []ActionSpec `yaml:"many,omitempty" toml:"many,omitempty"`
	Invert *ActionSpec  `yaml:"invert,omitempty" toml:"invert,omitempty"`
}

// PermSpec is a path with an optional octal mode ("0644") and owner.
type PermSpec struct {
	Path  string `yaml:"path" toml:"path"`
	Mode  string `yaml:"mode,omitempty" toml:"mode,omitempty"`
	Owner string `yaml:"owner,omitempty" toml:"owner,omitempty"`
}

// WriteSpec writes Content to a path.
type WriteSpec struct {
	PermSpec `yaml:",inline"`
	Content  string `yaml:"content" toml:"content"`
}

// SecretSpec decrypts the age file Source (or Source.age) to a path. Mode
// defaults to 0600.
type SecretSpec struct {
	PermSpec `yaml:",inline"`
	Source   string `yaml:"source" toml:"source"`
}

// RenameSpec moves From to To.
type RenameSpec struct {
	From string `yaml:"from" toml:"from"`
	To   string `yaml:"to" toml:"to"`
}

// ReplaceSpec replaces the single occurrence of Text or Regex with With.
type ReplaceSpec struct {
	Path  string `yaml:"path" toml:"path"`
	Text  string `yaml:"text,omitempty" toml:"text,omitempty"`
	Regex string `yaml:"regex,omitempty" toml:"regex,omitempty"`
	With  string `yaml:"with" toml:"with"`
}

// InstallSpec installs Packages with Manager, apt by default.
type InstallSpec struct {
	Manager  string   `yaml:"manager,omitempty" toml:"manager,omitempty"`
	Packages []string `yaml:"packages" toml:"packages"`
}

// ServiceCall runs `systemctl <Command> <Name>`.
type ServiceCall struct {
	Name    string `yaml:"name" toml:"name"`
	Command string `yaml:"command" toml:"command"`
}

// Type returns the kind of action a declares, "unknown" when none is set.
func (a ActionSpec) Type() string {
	if kinds := a.kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return "unknown"
}

func (a ActionSpec) kinds() []string {
	var kinds []string
	add := func(set bool, kind string) {
		if set {
			kinds = append(kinds, kind)
		}
	}
	add(a.WriteFile != nil, "write_file")
	add(a.WriteSecret != nil, "write_secret")
	add(a.CreateDir != nil, "create_dir")
	add(a.Delete != "", "delete")
	add(a.Rename != nil, "rename")
	add(a.SetPermissions != nil, "set_permissions")
	add(a.ReplaceOnce != nil, "replace_once")
	add(a.Command != nil, "command")
	add(a.Script != "", "script")
	add(a.Install != nil, "install")
	add(a.Service != nil, "service")
	add(a.Many != nil, "many")
	add(a.Invert != nil, "invert")
	return kinds
}

func (a ActionSpec) validate(where string) error {
	if err := validateKinds(where, a.kinds()); err != nil {
		return err
	}
	for i, sub := range a.Many {
		if err := sub.validate(fmt.Sprintf("%s.many[%d]", where, i)); err != nil {
			return err
		}
	}
	if a.Invert != nil {
		return a.Invert.validate(where + ".invert")
	}
	return nil
}
