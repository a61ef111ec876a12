package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/atomikpanda/pass/internal/ageutil"
	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/dgraph"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const helloYAML = `name: hello
description: Say {{ .greeting }}
help: "usage: apply greeting=<word>"
params: [greeting]
instructions:
  - name: Write greeting
    action:
      write_file:
        path: {{ .dir }}/hello.txt
        content: "{{ .greeting }}, world!"
    confirm:
      - is_file: {{ .dir }}/hello.txt
`

const helloTOML = `name = "hello"
description = "Say {{ .greeting }}"
params = ["greeting"]

[[instructions]]
name = "Write greeting"
[instructions.action.write_file]
path = "{{ .dir }}/hello.txt"
content = "{{ .greeting }}, world!"
[[instructions.confirm]]
is_file = "{{ .dir }}/hello.txt"
`

func TestLoadAndApply(t *testing.T) {
	for _, tt := range []struct{ name, file, content string }{
		{"yaml", "hello.yaml", helloYAML},
		{"toml", "hello.toml", helloTOML},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			f, err := Load(path, map[string]string{"greeting": "Hello", "dir": dir})
			if err != nil {
				t.Fatal(err)
			}
			if f.Description != "Say Hello" {
				t.Errorf("Description = %q", f.Description)
			}
			pb, err := f.Playbook()
			if err != nil {
				t.Fatal(err)
			}
			if got := pb.Instructions()[0].Action().Name(); got != "Write greeting" {
				t.Errorf("action name = %q", got)
			}
			if got := pb.Apply(nil); got != capability.Ok {
				t.Fatalf("Apply() = %s", got)
			}
			data, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "Hello, world!" {
				t.Errorf("content = %q", data)
			}
		})
	}
}

func TestLoadMissingParams(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.yaml", helloYAML)
	_, err := Load(path, map[string]string{"dir": "/tmp"})
	var missing *MissingParamsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *MissingParamsError", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "greeting" {
		t.Errorf("Missing = %v", missing.Missing)
	}
	if !strings.Contains(err.Error(), "usage: apply greeting=<word>") {
		t.Errorf("error should carry the help text: %q", err.Error())
	}
}

func TestLoadHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.yaml", helloYAML)
	h, err := LoadHeader(path)
	if err != nil {
		t.Fatal(err)
	}
	if h.Name != "hello" || len(h.Params) != 1 || h.Help == "" {
		t.Errorf("header = %+v", h)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.yaml": YAML,
		"a.yml":  YAML,
		"a.toml": TOML,
		"A.TOML": TOML,
		"a":      YAML,
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"no action kind",
			"name: x\ninstructions:\n  - action: {}\n",
			"instructions[0].action: no kind set",
		},
		{
			"two action kinds",
			"name: x\ninstructions:\n  - action: {delete: /a, script: echo}\n",
			"more than one kind set: delete, script",
		},
		{
			"no check kind",
			"name: x\nenv:\n  - name: nothing\ninstructions: []\n",
			"env[0]: no kind set",
		},
		{
			"nested check",
			"name: x\nenv:\n  - not: {all: [{}]}\ninstructions: []\n",
			"env[0].not.all[0]: no kind set",
		},
		{
			"action and mark_applied",
			"name: x\ninstructions:\n  - action: {delete: /a}\n    mark_applied: x\n",
			"both action and mark_applied set",
		},
		{
			"missing action",
			"name: x\ninstructions:\n  - name: nothing\n",
			"instructions[0]: no action",
		},
		{
			"unknown field",
			"name: x\ninstructions:\n  - action: {delete_everything: /}\n",
			"delete_everything",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), YAML, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseTOMLUnknownField(t *testing.T) {
	data := `name = "x"

[[instructions]]
name = "Write"
action = { delete = "/tmp/pass-x" }

[[instructions.confrim]]
is_file = "/tmp/pass-x"
`
	_, err := Parse([]byte(data), TOML, nil)
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "instructions.confrim") {
		t.Errorf("err = %q, want it to name instructions.confrim", err)
	}
}

func TestSpecTypes(t *testing.T) {
	if got := (CheckSpec{UserIsRoot: true}).Type(); got != "user_is_root" {
		t.Errorf("Type() = %q", got)
	}
	if got := (CheckSpec{Tag: "web"}).Type(); got != "tag" {
		t.Errorf("Type() = %q", got)
	}
	if got := (CheckSpec{All: []CheckSpec{}}).Type(); got != "all" {
		t.Errorf("Type() = %q", got)
	}
	if got := (ActionSpec{Install: &InstallSpec{}}).Type(); got != "install" {
		t.Errorf("Type() = %q", got)
	}
	if got := (ActionSpec{}).Type(); got != "unknown" {
		t.Errorf("Type() = %q", got)
	}
}

const compositeYAML = `name: composite
env:
  - name: Host is usable
    all:
      - os: {{ .os }}
      - not: {is_file: /pass-no-such-file}
      - any: [{is_dir: /pass-no-such-dir}, {path_exists: "{{ .dir }}"}]
instructions:
  - action:
      name: Build site
      many:
        - create_dir: {path: site}
        - write_file: {path: site/index.html, content: hi, mode: "0640"}
      dir: {{ .dir }}
    confirm:
      - is_file: {{ .dir }}/site/index.html
  - action:
      replace_once: {path: "{{ .dir }}/site/index.html", regex: "h.", with: hello}
    confirm:
      - file_contains: {path: "{{ .dir }}/site/index.html", text: hello, once: true}
`

func TestCompositePlaybook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix only")
	}
	dir := t.TempDir()
	f, err := Parse([]byte(compositeYAML), YAML, map[string]string{"os": runtime.GOOS, "dir": dir})
	if err != nil {
		t.Fatal(err)
	}
	pb, err := f.Playbook()
	if err != nil {
		t.Fatal(err)
	}
	if got := pb.EnvChecks()[0].Name(); got != "Host is usable" {
		t.Errorf("env name = %q", got)
	}
	if got := pb.Instructions()[0].Action().Name(); got != "Build site" {
		t.Errorf("action name = %q", got)
	}
	if got := pb.Apply(nil); got != capability.Ok {
		t.Fatalf("Apply() = %s", got)
	}
	index := filepath.Join(dir, "site", "index.html")
	data, err := os.ReadFile(index)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
	info, _ := os.Stat(index)
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %o, want 640", info.Mode().Perm())
	}
	// converged: everything is skipped
	if got := pb.Apply(nil); got != capability.Ok {
		t.Errorf("second Apply() = %s", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad mode", "name: x\ninstructions:\n  - action: {write_file: {path: /a, content: x, mode: rw}}\n"},
		{"bad regex", "name: x\nenv:\n  - file_contains: {path: /a, regex: \"(\"}\ninstructions: []\n"},
		{"no pattern", "name: x\nenv:\n  - stdout: {command: [ls]}\ninstructions: []\n"},
		{"both patterns", "name: x\ninstructions:\n  - action: {replace_once: {path: /a, text: a, regex: b, with: c}}\n"},
		{"chmod without mode", "name: x\ninstructions:\n  - action: {set_permissions: {path: /a}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml), YAML, nil)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.Playbook(); err == nil {
				t.Error("expected build error")
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Setenv(ageutil.EnvIdentity, "")
	t.Setenv(ageutil.EnvPassphrase, "")
	if (&File{}).Key() != nil {
		t.Error("Key() without config should be nil")
	}
	f := &File{Age: &AgeConfig{Passphrase: "p"}}
	if k := f.Key(); k == nil || k.Passphrase != "p" {
		t.Errorf("Key() = %+v", k)
	}
}

func TestGraph(t *testing.T) {
	if got := (&File{}).Graph(); got != dgraph.Default() {
		t.Errorf("Graph() = %+v", got)
	}
	f := &File{DGraph: &DGraphConfig{Root: "/var/lib/pass"}}
	if got := f.Graph(); got.Root != "/var/lib/pass" || got.Owner != "root" {
		t.Errorf("Graph() = %+v", got)
	}
}

func TestMarkApplied(t *testing.T) {
	f, err := Parse([]byte("name: web\ndgraph: {root: /srv/x}\ninstructions:\n  - mark_applied: web\n"), YAML, nil)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := f.Playbook()
	if err != nil {
		t.Fatal(err)
	}
	in := pb.Instructions()[0]
	if len(in.EnvChecks()) != 2 || len(in.ConfirmChecks()) != 1 {
		t.Errorf("mark_applied gates = %d env, %d confirm", len(in.EnvChecks()), len(in.ConfirmChecks()))
	}
	if got := in.ConfirmChecks()[0].Name(); got != "is file /srv/x/applied/web" {
		t.Errorf("confirm = %q", got)
	}
}

func TestSecretSourceRelativeToFile(t *testing.T) {
	b := builder{dir: "/etc/pass"}
	if got := b.resolve("tls.key"); got != filepath.Join("/etc/pass", "tls.key") {
		t.Errorf("resolve() = %q", got)
	}
	if got := b.resolve("/abs/tls.key"); got != "/abs/tls.key" {
		t.Errorf("resolve() = %q", got)
	}
}

func TestExamples(t *testing.T) {
	for _, name := range []string{"hello-world.yaml", "static-site.toml"} {
		t.Run(name, func(t *testing.T) {
			f, err := Load(filepath.Join("..", "..", "examples", name), map[string]string{"domain": "example.com"})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.Playbook(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
