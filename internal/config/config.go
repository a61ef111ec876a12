// Package config loads declarative playbook files. A file is YAML or TOML,
// chosen by extension, and is rendered as a Go template with the command-line
// parameters before it is decoded.
//
//	name: hello
//	description: Say hello
//	params: [greeting]
//	instructions:
//	  - name: Write greeting
//	    action:
//	      write_file: {path: hello.txt, content: "{{ .greeting }}"}
//	    confirm:
//	      - is_file: hello.txt
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/atomikpanda/pass/internal/template"
)

// File is a decoded playbook file.
type File struct {
	Name         string        `yaml:"name" toml:"name"`
	Description  string        `yaml:"description,omitempty" toml:"description,omitempty"`
	Help         string        `yaml:"help,omitempty" toml:"help,omitempty"`
	Params       []string      `yaml:"params,omitempty" toml:"params,omitempty"`
	Age          *AgeConfig    `yaml:"age,omitempty" toml:"age,omitempty"`
	DGraph       *DGraphConfig `yaml:"dgraph,omitempty" toml:"dgraph,omitempty"`
	Env          []CheckSpec   `yaml:"env,omitempty" toml:"env,omitempty"`
	Instructions []Instruction `yaml:"instructions" toml:"instructions"`

	// dir is the directory of the file; relative secret sources resolve
	// against it.
	dir string
}

// AgeConfig holds the credential for secret files.
type AgeConfig struct {
	Identity   string `yaml:"identity,omitempty" toml:"identity,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty" toml:"passphrase,omitempty"`
}

// DGraphConfig overrides the location and owner of the dependency graph.
type DGraphConfig struct {
	Root  string `yaml:"root,omitempty" toml:"root,omitempty"`
	Owner string `yaml:"owner,omitempty" toml:"owner,omitempty"`
}

// Instruction is one step of the playbook: either an action, or MarkApplied
// recording a playbook in the dependency graph.
type Instruction struct {
	Name        string      `yaml:"name,omitempty" toml:"name,omitempty"`
	Action      *ActionSpec `yaml:"action,omitempty" toml:"action,omitempty"`
	MarkApplied string      `yaml:"mark_applied,omitempty" toml:"mark_applied,omitempty"`
	Env         []CheckSpec `yaml:"env,omitempty" toml:"env,omitempty"`
	Confirm     []CheckSpec `yaml:"confirm,omitempty" toml:"confirm,omitempty"`
}

// Format is the encoding of a playbook file.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatOf picks the format from the file extension. Anything but .toml is
// YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return YAML
}

// MissingParamsError is returned when declared parameters were not given.
type MissingParamsError struct {
	Missing []string
	Help    string
}

func (e *MissingParamsError) Error() string {
	msg := fmt.Sprintf("missing parameters: %s", strings.Join(e.Missing, ", "))
	if e.Help != "" {
		msg += "\n\n" + e.Help
	}
	return msg
}

// Load reads the playbook file at path, rendering it with params. Declared
// parameters missing from params yield a *MissingParamsError.
func Load(path string, params map[string]string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playbook: %w", err)
	}
	format := FormatOf(path)
	h, err := parseHeader(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if missing := template.Missing(h.Params, params); len(missing) > 0 {
		return nil, &MissingParamsError{Missing: missing, Help: h.Help}
	}
	f, err := Parse(data, format, params)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Header is the part of a playbook file readable without parameters.
type Header struct {
	Name        string     `yaml:"name" toml:"name"`
	Description string     `yaml:"description" toml:"description"`
	Help        string     `yaml:"help" toml:"help"`
	Params      []string   `yaml:"params" toml:"params"`
	Age         *AgeConfig `yaml:"age" toml:"age"`
}

// LoadHeader reads the name, description, help and declared parameters of
// the playbook file at path.
func LoadHeader(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playbook: %w", err)
	}
	h, err := parseHeader(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return h, nil
}

// parseHeader renders data without parameters and decodes only the header
// fields, ignoring everything else.
func parseHeader(data []byte, format Format) (*Header, error) {
	rendered, err := template.Render(string(data), nil)
	if err != nil {
		return nil, err
	}
	var h Header
	switch format {
	case TOML:
		_, err = toml.Decode(rendered, &h)
	default:
		err = yaml.Unmarshal([]byte(rendered), &h)
	}
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	return &h, nil
}

// Parse renders data with params and decodes it.
func Parse(data []byte, format Format, params map[string]string) (*File, error) {
	rendered, err := template.Render(string(data), params)
	if err != nil {
		return nil, err
	}
	var f File
	switch format {
	case TOML:
		md, err := toml.Decode(rendered, &f)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("decode toml: unknown fields: %s", strings.Join(keys, ", "))
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader([]byte(rendered)))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate reports every check or action spec that does not have exactly one
// kind.
func (f *File) Validate() error {
	var errs []error
	for i, c := range f.Env {
		errs = append(errs, c.validate(fmt.Sprintf("env[%d]", i)))
	}
	for i, in := range f.Instructions {
		where := fmt.Sprintf("instructions[%d]", i)
		switch {
		case in.Action != nil && in.MarkApplied != "":
			errs = append(errs, fmt.Errorf("%s: both action and mark_applied set", where))
		case in.Action != nil:
			errs = append(errs, in.Action.validate(where+".action"))
		case in.MarkApplied == "":
			errs = append(errs, fmt.Errorf("%s: no action", where))
		}
		for j, c := range in.Env {
			errs = append(errs, c.validate(fmt.Sprintf("%s.env[%d]", where, j)))
		}
		for j, c := range in.Confirm {
			errs = append(errs, c.validate(fmt.Sprintf("%s.confirm[%d]", where, j)))
		}
	}
	return errors.Join(errs...)
}

func validateKinds(where string, kinds []string) error {
	switch len(kinds) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s: no kind set", where)
	default:
		return fmt.Errorf("%s: more than one kind set: %s", where, strings.Join(kinds, ", "))
	}
}
