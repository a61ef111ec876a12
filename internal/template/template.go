// Package template renders playbook files as Go templates against the input
// given on the command line. Playbooks use {{ .param }} anywhere in the file.
package template

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"env": os.Getenv,
}

// Render executes the Go template string s with params as the data object.
// Unknown parameters render as the empty string.
func Render(s string, params map[string]string) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=zero").Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	if params == nil {
		params = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// ParseParams parses "key=value,key=value". Keys and values are trimmed;
// an empty input yields an empty map.
func ParseParams(input string) (map[string]string, error) {
	params := map[string]string{}
	if strings.TrimSpace(input) == "" {
		return params, nil
	}
	for _, pair := range strings.Split(input, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", strings.TrimSpace(pair))
		}
		params[k] = strings.TrimSpace(v)
	}
	return params, nil
}

// Missing returns the declared parameters absent or empty in params, sorted.
func Missing(declared []string, params map[string]string) []string {
	var missing []string
	for _, name := range declared {
		if params[name] == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
