package playbook

import "github.com/atomikpanda/pass/internal/capability"

// Outcome is the terminal state of a single instruction within one Apply.
type Outcome string

const (
	// Applied means the action ran and every gate after it passed.
	Applied Outcome = "applied"
	// Skipped means the confirmation checks were already met.
	Skipped Outcome = "skipped"
	// Failed means a gate or the action failed; Apply stops here.
	Failed Outcome = "failed"
)

// Reporter receives the narration of an Apply. Calls are strictly nested:
// every Enter is matched by an Exit with the result of that scope. Reporters
// have no influence on the verdict.
type Reporter interface {
	PlaybookHeader(description string)
	PlaybookResult(description string, ok bool)

	EnterSection(name string)
	ExitSection(ok bool)

	EnterChecklist(title string)
	ChecklistItem(verdict capability.Verdict, index int, name string)
	// ChecklistTitleNote annotates the checklist before its items.
	ChecklistTitleNote(note string)
	// ChecklistNote annotates the checklist after its items.
	ChecklistNote(note string)
	ExitChecklist(ok bool)

	EnterProcess(name string)
	ExitProcess(ok bool)

	InstructionResult(index int, name string, outcome Outcome)
}

// Discard is a Reporter that ignores every event. Embed it to implement only
// the events of interest.
type Discard struct{}

func (Discard) PlaybookHeader(string)                         {}
func (Discard) PlaybookResult(string, bool)                   {}
func (Discard) EnterSection(string)                           {}
func (Discard) ExitSection(bool)                              {}
func (Discard) EnterChecklist(string)                         {}
func (Discard) ChecklistItem(capability.Verdict, int, string) {}
func (Discard) ChecklistTitleNote(string)                     {}
func (Discard) ChecklistNote(string)                          {}
func (Discard) ExitChecklist(bool)                            {}
func (Discard) EnterProcess(string)                           {}
func (Discard) ExitProcess(bool)                              {}
func (Discard) InstructionResult(int, string, Outcome)        {}

type tee []Reporter

// Tee returns a Reporter forwarding every event to each of reporters in order.
func Tee(reporters ...Reporter) Reporter {
	return tee(reporters)
}

func (t tee) PlaybookHeader(d string) {
	for _, r := range t {
		r.PlaybookHeader(d)
	}
}

func (t tee) PlaybookResult(d string, ok bool) {
	for _, r := range t {
		r.PlaybookResult(d, ok)
	}
}

func (t tee) EnterSection(name string) {
	for _, r := range t {
		r.EnterSection(name)
	}
}

func (t tee) ExitSection(ok bool) {
	for _, r := range t {
		r.ExitSection(ok)
	}
}

func (t tee) EnterChecklist(title string) {
	for _, r := range t {
		r.EnterChecklist(title)
	}
}

func (t tee) ChecklistItem(v capability.Verdict, i int, name string) {
	for _, r := range t {
		r.ChecklistItem(v, i, name)
	}
}

func (t tee) ChecklistTitleNote(note string) {
	for _, r := range t {
		r.ChecklistTitleNote(note)
	}
}

func (t tee) ChecklistNote(note string) {
	for _, r := range t {
		r.ChecklistNote(note)
	}
}

func (t tee) ExitChecklist(ok bool) {
	for _, r := range t {
		r.ExitChecklist(ok)
	}
}

func (t tee) EnterProcess(name string) {
	for _, r := range t {
		r.EnterProcess(name)
	}
}

func (t tee) ExitProcess(ok bool) {
	for _, r := range t {
		r.ExitProcess(ok)
	}
}

func (t tee) InstructionResult(i int, name string, o Outcome) {
	for _, r := range t {
		r.InstructionResult(i, name, o)
	}
}
