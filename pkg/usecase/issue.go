package usecase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// conflictIssue builds the tracking issue for a cherry-pick that could not
// apply. The staging branch has already been reset when this is filed.
func conflictIssue(report *model.RunReport, commit model.CommitRef, pickErr error, cfg model.ReleaseConfig) (string, string) {
	title := fmt.Sprintf("Release %s: cherry-pick conflict on %s", report.Tag, commit.Short())

	var sb strings.Builder
	sb.WriteString("## 🍒 Cherry-pick conflict\n\n")
	sb.WriteString(fmt.Sprintf("Cherry-picking `%s` onto `%s` failed. The branch has been reset to `%s` and no later commits were attempted.\n\n",
		commit.Short(), cfg.StagingBranch, cfg.StagingRef()))

	sb.WriteString(fmt.Sprintf("**Tag**: %s\n", report.Tag))
	sb.WriteString(fmt.Sprintf("**Commit**: `%s`\n", commit.SHA))
	sb.WriteString(fmt.Sprintf("**Subject**: %s\n", commit.Subject))
	if commit.Author != "" {
		sb.WriteString(fmt.Sprintf("**Author**: %s\n", commit.Author))
	}
	sb.WriteString(fmt.Sprintf("**Run ID**: %s\n\n", report.RunID))

	if pickErr != nil {
		sb.WriteString("**Error**:\n\n```\n")
		sb.WriteString(pickErr.Error())
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString("### Next steps\n\n")
	sb.WriteString("- Resolve the conflict on a working branch and re-run the release, or drop the commit from the list.\n")

	sb.WriteString(footer())
	return title, sb.String()
}

// validationIssue builds the tracking issue for a pushed commit that CI
// failed or timed out on. The revert has already been pushed when this is
// filed.
func validationIssue(report *model.RunReport, outcome model.CommitOutcome, snap model.CheckSnapshot, cfg model.ReleaseConfig) (string, string) {
	verb := "failure"
	header := "## 🚨 CI rejected a staged commit\n\n"
	if outcome.CIResult == model.VerdictTimeout {
		verb = "timeout"
		header = "## 🚨 CI validation timed out\n\n"
	}
	title := fmt.Sprintf("Release %s: CI %s on %s", report.Tag, verb, outcome.Commit.Short())

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(fmt.Sprintf("CI did not validate `%s` after it was pushed to `%s`. A revert commit now sits on top of the branch and no later commits were attempted.\n\n",
		outcome.Commit.Short(), cfg.StagingBranch))

	sb.WriteString(fmt.Sprintf("**Tag**: %s\n", report.Tag))
	sb.WriteString(fmt.Sprintf("**Commit**: `%s`\n", outcome.Commit.SHA))
	sb.WriteString(fmt.Sprintf("**Subject**: %s\n", outcome.Commit.Subject))
	if outcome.Commit.Author != "" {
		sb.WriteString(fmt.Sprintf("**Author**: %s\n", outcome.Commit.Author))
	}
	sb.WriteString(fmt.Sprintf("**Staging commit**: `%s`\n", outcome.StagingSHA))
	sb.WriteString(fmt.Sprintf("**Verdict**: %s\n", outcome.CIResult))
	sb.WriteString(fmt.Sprintf("**Checks**: %s\n", snap.Summary()))
	sb.WriteString(fmt.Sprintf("**Run ID**: %s\n\n", report.RunID))

	sb.WriteString("### Next steps\n\n")
	sb.WriteString("- Inspect the failing checks on the staging commit.\n")
	sb.WriteString("- Fix the change and schedule it for a later release; the revert keeps staging releasable.\n")

	sb.WriteString(footer())
	return title, sb.String()
}

// summaryNotification reports a finished run. A dispatch error downgrades
// the run to a warning with manual-retry instructions; it never fails it.
func summaryNotification(report *model.RunReport, triggerErr error) model.Notification {
	var sb strings.Builder
	for _, o := range report.Validated() {
		sb.WriteString(fmt.Sprintf("- `%s` %s\n", o.Commit.Short(), o.Commit.Subject))
	}

	if triggerErr != nil {
		sb.WriteString(fmt.Sprintf("\nWorkflow dispatch failed: %v\n", triggerErr))
		sb.WriteString(fmt.Sprintf("Staging is validated and intact. Dispatch by hand: gh workflow run <workflow> -f tag=%s -f create_release=true\n", report.Tag))
		sb.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))
		return model.Notification{
			Level: model.NotifyWarning,
			Title: fmt.Sprintf("Release %s staged, workflow dispatch failed", report.Tag),
			Body:  sb.String(),
		}
	}

	sb.WriteString("\nRelease workflow dispatched.\n")
	sb.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))
	return model.Notification{
		Level: model.NotifyInfo,
		Title: fmt.Sprintf("Release %s staged", report.Tag),
		Body:  sb.String(),
	}
}

// failureNotification reports an aborted run.
func failureNotification(report *model.RunReport, outcome model.CommitOutcome, runErr error) model.Notification {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run aborted on `%s` %s\n", outcome.Commit.Short(), outcome.Commit.Subject))
	sb.WriteString(fmt.Sprintf("State: %s\n", outcome.State))
	if runErr != nil {
		sb.WriteString(fmt.Sprintf("Error: %v\n", runErr))
	}
	if report.IssueURL != "" {
		sb.WriteString(fmt.Sprintf("Tracking issue: %s\n", report.IssueURL))
	}
	sb.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))

	return model.Notification{
		Level: model.NotifyError,
		Title: fmt.Sprintf("Release %s aborted", report.Tag),
		Body:  sb.String(),
	}
}

func footer() string {
	return fmt.Sprintf("\n---\n🤖 Filed by %s\n", types.AppName)
}
