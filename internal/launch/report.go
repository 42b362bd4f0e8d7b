// internal/launch/report.go
package launch

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/solana-launcher/internal/dispatch"
)

// StageStatus is the terminal state of a single pipeline stage.
type StageStatus string

const (
	StatusOK      StageStatus = "ok"
	StatusSkipped StageStatus = "skipped"
	StatusFailed  StageStatus = "failed"
)

// Pipeline stage names, in execution order.
const (
	StageCreate = "create"
	StageBuy    = "buy"
	StageSubmit = "submit"
	StageSettle = "settle"
	StageSell   = "sell"
)

// StageResult records the outcome of one stage. Detail carries a
// human-readable note: a signature, a skip reason or an error message.
type StageResult struct {
	Stage  string
	Status StageStatus
	Detail string
}

// RunReport aggregates stage outcomes for a full pipeline run. The
// pipeline always runs to completion; failures are recorded here
// instead of aborting the process.
type RunReport struct {
	Mint     string
	Stages   []StageResult
	Dispatch *dispatch.Report
}

func (r *RunReport) record(stage string, status StageStatus, detail string) {
	r.Stages = append(r.Stages, StageResult{Stage: stage, Status: status, Detail: detail})
}

// Failed reports whether any stage ended in StatusFailed.
func (r *RunReport) Failed() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// StageStatusFor returns the recorded status for the named stage, or
// empty if the stage never ran.
func (r *RunReport) StageStatusFor(stage string) StageStatus {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Status
		}
	}
	return ""
}

// Summary renders the report as a short multi-line string for logs
// and for the final console printout.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mint: %s\n", r.Mint)
	for _, s := range r.Stages {
		if s.Detail != "" {
			fmt.Fprintf(&b, "  %-7s %-8s %s\n", s.Stage, s.Status, s.Detail)
		} else {
			fmt.Fprintf(&b, "  %-7s %s\n", s.Stage, s.Status)
		}
	}
	if r.Dispatch != nil {
		fmt.Fprintf(&b, "  dispatch mode=%s confirmed=%t attempts=%d\n",
			r.Dispatch.Mode, r.Dispatch.Confirmed, r.Dispatch.Attempts)
	}
	return b.String()
}
