// Package story renders the narration of a playbook apply as hierarchical
// plain text:
//
//	Applying playbook: Hello world
//	 _
//	|Playbook.Actions.[1.Write file].pre.Confirmation
//	|
//	|-[ Y ] 1.is file hello.txt
//	|
//	|> ok
//	Playbook.Actions.[1.Write file].pre|> ok
//
// Section names containing a dot are bracketed so the path stays readable.
package story

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/color"
	"github.com/atomikpanda/pass/internal/playbook"
)

const (
	defaultWidth = 80
	minWidth     = 20
)

// Formatter is a playbook.Reporter writing the narration to an io.Writer.
// The section stack lives in the formatter; use one per Apply.
type Formatter struct {
	out             io.Writer
	width           int
	stack           []string
	nextIsSeparator bool
}

var _ playbook.Reporter = (*Formatter)(nil)

// New returns a Formatter writing to out, wrapping lines at the terminal width
// when out is a terminal.
func New(out io.Writer) *Formatter {
	return NewWidth(out, Width(out))
}

// NewWidth returns a Formatter wrapping lines at width columns.
func NewWidth(out io.Writer, width int) *Formatter {
	return &Formatter{out: out, width: max(width, minWidth)}
}

// Width returns the column count of w when it is a terminal, never less than
// 20, and 80 otherwise.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return defaultWidth
	}
	return max(cols, minWidth)
}

func okFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

func (f *Formatter) PlaybookHeader(description string) {
	fmt.Fprintf(f.out, "Applying playbook: %s\n", description)
	f.nextIsSeparator = true
}

func (f *Formatter) PlaybookResult(description string, ok bool) {
	fmt.Fprintf(f.out, "\n%s\n\n %s\n\n", description, color.Status(ok, strings.ToUpper(okFail(ok))))
}

func (f *Formatter) EnterSection(name string) {
	f.stack = append(f.stack, name)
}

func (f *Formatter) ExitSection(ok bool) {
	f.putSeparator()
	fmt.Fprintf(f.out, "%s|> %s\n", f.sectionName(), color.Status(ok, okFail(ok)))
	f.pop()
}

func (f *Formatter) EnterChecklist(title string) {
	// no blank line between a section and its checklist
	f.nextIsSeparator = false
	f.stack = append(f.stack, title)
	fmt.Fprintln(f.out, " _")
	f.printWrapped("|", "|", f.sectionName())
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "|")
}

func (f *Formatter) ChecklistItem(verdict capability.Verdict, index int, name string) {
	mark := verdict.String()
	switch verdict {
	case capability.Yes:
		mark = color.Green(mark)
	case capability.No:
		mark = color.Red(mark)
	default:
		mark = color.Yellow(mark)
	}
	f.printWrapped(fmt.Sprintf("|-[ %s ] ", mark), "|", fmt.Sprintf("%d.%s", index, name))
	fmt.Fprintln(f.out)
}

func (f *Formatter) ChecklistTitleNote(note string) {
	f.printWrapped("| ", "|", "*"+note+"*")
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "|")
}

func (f *Formatter) ChecklistNote(note string) {
	fmt.Fprintln(f.out, "|")
	f.printWrapped("| ", "|", "*"+note+"*")
	fmt.Fprintln(f.out)
}

func (f *Formatter) ExitChecklist(ok bool) {
	fmt.Fprintln(f.out, "|")
	fmt.Fprintf(f.out, "|> %s\n", color.Status(ok, okFail(ok)))
	f.pop()
	f.nextIsSeparator = true
}

func (f *Formatter) EnterProcess(name string) {
	f.stack = append(f.stack, name)
	f.putSeparator()
	fmt.Fprintf(f.out, "%s|> ...applying", f.sectionName())
}

func (f *Formatter) ExitProcess(ok bool) {
	if ok {
		fmt.Fprintln(f.out, "...done!")
	} else {
		fmt.Fprintln(f.out, color.BoldRed("...FAIL!"))
	}
	f.pop()
}

func (f *Formatter) InstructionResult(int, string, playbook.Outcome) {}

func (f *Formatter) pop() {
	if len(f.stack) > 0 {
		f.stack = f.stack[:len(f.stack)-1]
	}
}

func (f *Formatter) putSeparator() {
	if f.nextIsSeparator {
		f.nextIsSeparator = false
		fmt.Fprintln(f.out)
	}
}

func (f *Formatter) sectionName() string {
	parts := make([]string, len(f.stack))
	for i, s := range f.stack {
		if strings.Contains(s, ".") {
			s = "[" + s + "]"
		}
		parts[i] = s
	}
	return strings.Join(parts, ".")
}

// printWrapped writes text after prefix, continuing overflowing lines after
// border. The last line is left without a newline.
func (f *Formatter) printWrapped(prefix, border, text string) {
	indent := max(visibleLen(prefix), visibleLen(border))
	textWidth := max(f.width-indent, 1)
	runes := []rune(text)

	lead := pad(prefix, indent)
	var lines []string
	for start := 0; start == 0 || start < len(runes); start += textWidth {
		end := min(start+textWidth, len(runes))
		lines = append(lines, lead+string(runes[start:end]))
		lead = pad(border, indent)
	}
	fmt.Fprint(f.out, strings.Join(lines, "\n"))
}

func pad(s string, width int) string {
	if n := visibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// visibleLen counts runes, ignoring ANSI colour sequences.
func visibleLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			if j := strings.IndexByte(s[i:], 'm'); j >= 0 {
				i += j + 1
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return n
}
