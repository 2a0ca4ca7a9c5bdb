package types

import (
	"encoding/json"
	"fmt"
)

// Mode selects how a statement is executed and how its output is shaped.
type Mode string

const (
	// ModeRun executes a statement and reports the number of affected rows.
	ModeRun Mode = "run"
	// ModeGet returns the first matching row.
	ModeGet Mode = "get"
	// ModeAll returns every matching row.
	ModeAll Mode = "all"
)

// ParseMode validates a mode string received from the caller.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRun, ModeGet, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Result is the structured output of a single bridge execution.
type Result struct {
	Mode Mode

	// Changes is the affected row count (ModeRun)
	Changes int64

	// Row is the single matched row (ModeGet)
	Row *Document

	// Rows holds every matched row (ModeAll), never nil after execution
	Rows []*Document
}

// MarshalJSON shapes the result per mode:
// run -> {"changes": n}, get -> object, all -> array.
func (r *Result) MarshalJSON() ([]byte, error) {
	switch r.Mode {
	case ModeRun:
		return json.Marshal(struct {
			Changes int64 `json:"changes"`
		}{r.Changes})
	case ModeGet:
		if r.Row == nil {
			return []byte("null"), nil
		}
		return r.Row.MarshalJSON()
	case ModeAll:
		rows := r.Rows
		if rows == nil {
			rows = []*Document{}
		}
		return json.Marshal(rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, string(r.Mode))
	}
}
