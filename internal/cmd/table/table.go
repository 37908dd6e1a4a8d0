// Package table converts sync state and results into table rows for CLI
// output.
package table

import (
	"strconv"
	"time"

	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// StateToTableData renders persisted sync state as a key-value table.
func StateToTableData(st state.State, path string) Data {
	watermark := st.Watermark
	if watermark == "" {
		watermark = "(none, next sync is a full sync)"
	}
	account := "(not resolved)"
	if st.AccountID > 0 {
		account = strconv.Itoa(st.AccountID)
	}
	lastRun := "never"
	if !st.LastRun.IsZero() {
		lastRun = st.LastRun.Local().Format(constants.TimeFormatHuman)
	}

	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Account", account},
			{"Library size", strconv.Itoa(st.RecordCount)},
			{"Watermark", watermark},
			{"Last run", lastRun},
			{"State file", path},
		},
	}
}

// ResultToTableData renders the counters of a sync result.
func ResultToTableData(r *sync.Result) Data {
	watermark := r.Watermark
	if !r.WatermarkAdvanced {
		watermark += " (unchanged)"
	}
	return Data{
		Headers: []string{"Created", "Updated", "Renamed", "Failed", "Fetched", "Watermark", "Duration"},
		Rows: [][]string{{
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Renamed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Fetched),
			watermark,
			r.Duration.Round(time.Millisecond).String(),
		}},
		ColumnAlignment: []Align{AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignLeft, AlignRight},
	}
}

// FailuresToTableData lists the notes a sync could not reconcile.
func FailuresToTableData(failures []sync.Failure) Data {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Kind, strconv.Itoa(f.ID), f.Name, f.Err.Error()})
	}
	return Data{
		Headers:         []string{"Kind", "ID", "Name", "Error"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}
