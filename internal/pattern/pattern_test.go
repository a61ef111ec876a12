package pattern

import "testing"

func TestPatternReplaceOnce(t *testing.T) {
	data := []byte("111 123 333")
	tests := []struct {
		name    string
		pattern Pattern
		want    string
		ok      bool
	}{
		{"exact", Text("123"), "111 aaa 333", true},
		{"exact repeated", Text("1"), "", false},
		{"exact empty", Text(""), "", false},
		{"regex", MustRegex("1.3"), "111 aaa 333", true},
		{"regex repeated", MustRegex(".1"), "", false},
		{"regex empty", MustRegex(""), "", false},
		{"regex absent", MustRegex("x+"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.pattern.ReplaceOnce(data, []byte("aaa"))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if string(data) != "111 123 333" {
		t.Errorf("input modified: %q", data)
	}
}

func TestPatternContainsOnce(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		data    string
		want    bool
	}{
		{"exact once", Text("cd"), "abcd", true},
		{"exact twice", Text("cd"), "abcdabcd", false},
		{"exact overlap", Text("aa"), "aaa", true},
		{"regex once", MustRegex(`port=\d+`), "host=a\nport=22\n", true},
		{"regex twice", MustRegex(`port=\d+`), "port=22\nport=23\n", false},
		{"regex anchor on empty", MustRegex(`^`), "", false},
		{"regex start anchor", MustRegex(`^`), "abc", true},
		{"regex end anchor", MustRegex(`\z`), "abc", true},
		{"regex line anchors", MustRegex(`(?m)^`), "a\nb", false},
		{"regex optional", MustRegex(`x*`), "", false},
		{"regex invalid utf8", MustRegex(`a`), "\xffa", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pattern.ContainsOnce([]byte(tt.data)); got != tt.want {
				t.Errorf("ContainsOnce(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestPatternContains(t *testing.T) {
	if !Text("b").Contains([]byte("abcb")) {
		t.Error("exact Contains should find repeated pattern")
	}
	if !MustRegex(`b+`).Contains([]byte("abbc")) {
		t.Error("regex Contains should match")
	}
	if MustRegex(`a`).Contains([]byte("\xffa")) {
		t.Error("regex Contains must reject invalid UTF-8")
	}
}

func TestExactCopiesInput(t *testing.T) {
	b := []byte("abc")
	p := Exact(b)
	b[0] = 'x'
	if !p.ContainsOnce([]byte("abc")) {
		t.Error("Exact should copy its input")
	}
}

func TestRegexInvalid(t *testing.T) {
	if _, err := Regex("("); err == nil {
		t.Error("expected compile error")
	}
}

func TestPatternString(t *testing.T) {
	if got := MustRegex("a.b").String(); got != "/a.b/" {
		t.Errorf("String() = %q", got)
	}
	if got := Text("ab").String(); got != `"ab"` {
		t.Errorf("String() = %q", got)
	}
	if Text("a").IsRegex() || !MustRegex("a").IsRegex() {
		t.Error("IsRegex mismatch")
	}
}

func TestPatternReplaceOnceAnchors(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		want    string
	}{
		{"prepend", MustRegex(`^`), "# header\nlisten 80;\n"},
		{"append", MustRegex(`\z`), "listen 80;\n# header\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.pattern.ReplaceOnce([]byte("listen 80;\n"), []byte("# header\n"))
			if !ok {
				t.Fatal("ReplaceOnce failed")
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if _, ok := MustRegex(`^`).ReplaceOnce(nil, []byte("x")); ok {
		t.Error("empty match in empty data should not count as once")
	}
}
