package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

// printPlan renders the resolved release plan before confirmation.
func printPlan(w io.Writer, tag string, cfg model.ReleaseConfig, commits []model.CommitRef) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Release"), bold.Sprint(tag))
	fmt.Fprintf(w, "  repository:     %s\n", cfg.Repo)
	fmt.Fprintf(w, "  staging branch: %s (remote %s)\n", cfg.StagingBranch, cfg.Remote)
	fmt.Fprintf(w, "  workflow:       %s\n", cfg.WorkflowFile)
	fmt.Fprintf(w, "  commits:\n")
	for i, commit := range commits {
		fmt.Fprintf(w, "  %3d. %s %s\n", i+1, color.CyanString(commit.Short()), commit.Subject)
	}
}

// renderProgress is the per-poll progress line while awaiting CI.
func renderProgress(snap model.CheckSnapshot, elapsed time.Duration) {
	fmt.Printf("  %s %s (elapsed %s)\n", color.YellowString("waiting"), snap.Summary(), elapsed)
}

// printReport renders the final run summary.
func printReport(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "\n%s release %s staged, %d commit(s) validated in %s\n",
		color.GreenString("ok:"), report.Tag, len(report.Validated()), report.Elapsed())
	for _, o := range report.Outcomes {
		fmt.Fprintf(w, "  %s %s (%s)\n", color.CyanString(o.Commit.Short()), o.Commit.Subject, o.State)
	}
	if report.Triggered {
		fmt.Fprintln(w, "release workflow dispatched")
	}
}

// printTriggerWarning renders manual-retry instructions after a failed
// workflow dispatch. Staging is validated and intact at this point.
func printTriggerWarning(w io.Writer, cfg model.ReleaseConfig, report *model.RunReport) {
	fmt.Fprintf(w, "\n%s staging is validated but the release workflow could not be dispatched\n",
		color.YellowString("warning:"))
	fmt.Fprintln(w, "dispatch it by hand:")
	fmt.Fprintf(w, "  gh workflow run %s --ref %s -f tag=%s -f create_release=true\n",
		cfg.WorkflowFile, cfg.StagingBranch, report.Tag)
}

// printStatus renders a one-shot or awaited check classification.
func printStatus(w io.Writer, commit model.CommitRef, verdict model.CheckVerdict, snap model.CheckSnapshot) {
	fmt.Fprintf(w, "%s %s\n", color.CyanString(commit.Short()), commit.Subject)
	fmt.Fprintf(w, "  checks:  %s\n", snap.Summary())
	fmt.Fprintf(w, "  verdict: %s\n", verdictString(verdict))
}

func verdictString(v model.CheckVerdict) string {
	switch v {
	case model.VerdictSuccess:
		return color.GreenString(string(v))
	case model.VerdictFailure, model.VerdictTimeout:
		return color.RedString(string(v))
	default:
		return color.YellowString(string(v))
	}
}
