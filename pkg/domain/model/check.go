package model

import (
	"fmt"
	"strings"
)

// CheckVerdict is the combined state of all check runs on one commit.
type CheckVerdict string

const (
	// VerdictSuccess means every check run completed successfully and all
	// required checks were present.
	VerdictSuccess CheckVerdict = "success"

	// VerdictFailure means at least one check run failed or was cancelled.
	VerdictFailure CheckVerdict = "failure"

	// VerdictPending means checks are still running, have not been reported
	// yet, or a required check is missing.
	VerdictPending CheckVerdict = "pending"

	// VerdictTimeout is assigned by the poller when the polling budget ran
	// out while the verdict was still pending. The CI API never returns it.
	VerdictTimeout CheckVerdict = "timeout"
)

// CheckRun is one CI check reported for a commit.
type CheckRun struct {
	Name       string
	Status     string // queued, in_progress, completed
	Conclusion string // empty until completed
	DetailsURL string
}

// Completed reports whether the run has finished and carries a conclusion.
func (r CheckRun) Completed() bool {
	return r.Status == "completed"
}

var (
	failedConclusions = map[string]bool{
		"failure":   true,
		"cancelled": true,
		"canceled":  true,
	}
	passedConclusions = map[string]bool{
		"success": true,
		"neutral": true,
		"skipped": true,
	}
)

// CheckSnapshot is one observation of a commit's check runs, reduced to the
// counters the verdict is computed from.
type CheckSnapshot struct {
	Total           int
	Completed       int
	Succeeded       int
	Failed          int
	Pending         int
	RequiredPresent bool
	FailedNames     []string
}

// NewCheckSnapshot reduces a list of check runs to a snapshot. Required check
// names are matched case-insensitively; an empty required list means any
// non-empty set of checks can validate the commit.
func NewCheckSnapshot(runs []CheckRun, required []string) CheckSnapshot {
	snap := CheckSnapshot{Total: len(runs)}

	seen := map[string]bool{}
	for _, run := range runs {
		seen[strings.ToLower(run.Name)] = true

		if !run.Completed() {
			snap.Pending++
			continue
		}
		snap.Completed++
		switch {
		case failedConclusions[run.Conclusion]:
			snap.Failed++
			snap.FailedNames = append(snap.FailedNames, run.Name)
		case passedConclusions[run.Conclusion]:
			snap.Succeeded++
		default:
			// action_required, stale and other conclusions neither pass nor
			// fail. They hold the verdict at pending.
			snap.Pending++
		}
	}

	snap.RequiredPresent = true
	for _, name := range required {
		if !seen[strings.ToLower(name)] {
			snap.RequiredPresent = false
			break
		}
	}

	return snap
}

// Verdict folds the snapshot into a single state. Failure wins over pending,
// pending wins over success.
func (s CheckSnapshot) Verdict() CheckVerdict {
	switch {
	case s.Failed > 0:
		return VerdictFailure
	case s.Total == 0, !s.RequiredPresent, s.Pending > 0:
		return VerdictPending
	case s.Succeeded == s.Total:
		return VerdictSuccess
	default:
		return VerdictPending
	}
}

// Summary renders the snapshot for progress lines and issue bodies,
// e.g. "4/5 completed, 1 failed (lint)".
func (s CheckSnapshot) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d completed", s.Completed, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", s.Failed, strings.Join(s.FailedNames, ", "))
	}
	if s.Pending > 0 {
		fmt.Fprintf(&b, ", %d pending", s.Pending)
	}
	if !s.RequiredPresent {
		b.WriteString(", required checks missing")
	}
	return b.String()
}

// Classify is the one-shot form used by status queries: reduce and fold in a
// single call.
func Classify(runs []CheckRun, required []string) CheckVerdict {
	return NewCheckSnapshot(runs, required).Verdict()
}
