package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// tagPattern matches release tags of the form vMAJOR.MINOR.PATCH with an
// optional pre-release suffix, e.g. v1.2.3 or v0.1.0-rc1.
var tagPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// ValidateTag checks a release tag against the required pattern. It runs
// before any state-changing operation.
func ValidateTag(tag string) error {
	if !tagPattern.MatchString(tag) {
		return goerr.New("tag must match vMAJOR.MINOR.PATCH[-prerelease]",
			goerr.V("tag", tag), goerr.T(types.ErrTagInput))
	}
	return nil
}

// CommitRef identifies one resolved commit together with the metadata shown
// in plans, logs and tracking issues.
type CommitRef struct {
	SHA     string
	Subject string
	Author  string
}

// Short returns the abbreviated commit hash used in human-facing output.
func (c CommitRef) Short() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// ReleaseRequest is the validated input of one orchestrator run.
type ReleaseRequest struct {
	Tag     string
	Commits []CommitRef // application order, oldest first
}

// NewReleaseRequest validates the tag and the commit list. Both invariants
// hold before the pipeline touches any external system.
func NewReleaseRequest(tag string, commits []CommitRef) (*ReleaseRequest, error) {
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, goerr.New("commit list is empty", goerr.T(types.ErrTagInput))
	}
	return &ReleaseRequest{Tag: tag, Commits: commits}, nil
}

// Validate re-checks the request invariants. The orchestrator calls this as
// its own fail-fast guard regardless of how the request was constructed.
func (r *ReleaseRequest) Validate() error {
	if r == nil {
		return goerr.New("release request is nil", goerr.T(types.ErrTagInput))
	}
	if err := ValidateTag(r.Tag); err != nil {
		return err
	}
	if len(r.Commits) == 0 {
		return goerr.New("commit list is empty", goerr.T(types.ErrTagInput))
	}
	return nil
}

// IsPrerelease reports whether the tag carries a pre-release suffix.
func (r *ReleaseRequest) IsPrerelease() bool {
	return strings.Contains(r.Tag, "-")
}

// ReleaseConfig carries every setting the orchestrator and poller are
// constructed with. Nothing reads the environment after startup.
type ReleaseConfig struct {
	Repo           string // "owner/name"
	Remote         string
	StagingBranch  string
	RequiredChecks []string
	PollInterval   time.Duration
	PollTimeout    time.Duration
	WorkflowFile   string
	IssueLabels    []string
	Prerelease     bool
}

// StagingRef returns the remote-tracking ref of the staging branch,
// e.g. "origin/staging". Hard resets always target this ref.
func (c ReleaseConfig) StagingRef() string {
	return c.Remote + "/" + c.StagingBranch
}
