// Package audit keeps an append-only JSON-lines history of playbook applies:
// one entry per instruction outcome and one per playbook verdict.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atomikpanda/pass/internal/playbook"
)

// Entry records one outcome. Instruction is empty for the playbook verdict.
type Entry struct {
	Time        time.Time `json:"time"`
	Playbook    string    `json:"playbook"`
	Instruction string    `json:"instruction,omitempty"`
	Outcome     string    `json:"outcome"` // "applied" | "skipped" | "failed"
}

// Log is a history file.
type Log struct {
	Path string
}

// Default returns the Log at ~/.local/share/pass/history.log.
func Default() (Log, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Log{}, fmt.Errorf("resolve home dir: %w", err)
	}
	return Log{Path: filepath.Join(home, ".local", "share", "pass", "history.log")}, nil
}

// Append writes e as one line, creating the file and its directory on demand.
func (l Log) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return f.Close()
}

// Read loads entries, optionally only those of one playbook, returning the
// last limit of them (all if limit <= 0). A missing file is an empty history.
func (l Log) Read(playbookFilter string, limit int) ([]Entry, error) {
	f, err := os.Open(l.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip malformed lines
		}
		if playbookFilter != "" && e.Playbook != playbookFilter {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Recorder is a playbook.Reporter appending outcomes to a Log. Write errors
// are logged and otherwise ignored; they never change the verdict.
type Recorder struct {
	playbook.Discard
	log      Log
	playbook string
}

var _ playbook.Reporter = (*Recorder)(nil)

// NewRecorder returns a Recorder for the playbook called name.
func NewRecorder(l Log, name string) *Recorder {
	return &Recorder{log: l, playbook: name}
}

func (r *Recorder) InstructionResult(index int, name string, outcome playbook.Outcome) {
	r.append(Entry{
		Playbook:    r.playbook,
		Instruction: fmt.Sprintf("%d.%s", index, name),
		Outcome:     string(outcome),
	})
}

func (r *Recorder) PlaybookResult(_ string, ok bool) {
	outcome := playbook.Applied
	if !ok {
		outcome = playbook.Failed
	}
	r.append(Entry{Playbook: r.playbook, Outcome: string(outcome)})
}

func (r *Recorder) append(e Entry) {
	if err := r.log.Append(e); err != nil {
		log.Warn().Err(err).Str("path", r.log.Path).Msg("audit entry dropped")
	}
}
