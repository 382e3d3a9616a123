package model

import "time"

// CommitState tracks one commit through the staging pipeline.
type CommitState string

const (
	// StatePicking means the cherry-pick is being applied locally.
	StatePicking CommitState = "picking"

	// StatePushed means the pick landed on the remote staging branch.
	StatePushed CommitState = "pushed"

	// StateAwaitingCI means the poller is watching the pushed commit.
	StateAwaitingCI CommitState = "awaiting_ci"

	// StateValidated means CI passed and the commit stays on staging.
	StateValidated CommitState = "validated"

	// StateReverted means CI failed or timed out and a revert commit now
	// sits on top of the pick.
	StateReverted CommitState = "reverted"
)

// CommitOutcome records where one commit ended up.
type CommitOutcome struct {
	Commit     CommitRef
	StagingSHA string // SHA of the pick on the staging branch
	State      CommitState
	CIResult   CheckVerdict
}

// RunReport aggregates one orchestrator run for logs and notifications.
type RunReport struct {
	RunID      string
	Tag        string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []CommitOutcome
	IssueURL   string
	Triggered  bool
}

// Elapsed returns the wall-clock duration of the run.
func (r *RunReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validated returns the outcomes that survived CI, in application order.
func (r *RunReport) Validated() []CommitOutcome {
	var out []CommitOutcome
	for _, o := range r.Outcomes {
		if o.State == StateValidated {
			out = append(out, o)
		}
	}
	return out
}
