package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// VersionControl defines the local git operations the pipeline performs in
// the working repository. Every method maps to one porcelain command.
type VersionControl interface {
	// Fetch updates remote-tracking refs for the configured remote.
	Fetch(ctx context.Context, remote string) error

	// Checkout switches the working tree to the branch.
	Checkout(ctx context.Context, branch string) error

	// ResetHard moves the current branch to ref and discards local changes.
	ResetHard(ctx context.Context, ref string) error

	// CherryPick applies the commit onto the current branch, recording the
	// source hash in the message trailer.
	CherryPick(ctx context.Context, sha string) error

	// CherryPickAbort cancels an in-progress cherry-pick and restores the
	// working tree.
	CherryPickAbort(ctx context.Context) error

	// RevertHead creates a commit that undoes the current branch tip.
	RevertHead(ctx context.Context) error

	// Push updates the remote branch to the local branch tip.
	Push(ctx context.Context, remote, branch string) error

	// HeadSHA returns the full hash of the current branch tip.
	HeadSHA(ctx context.Context) (string, error)

	// CommitInfo resolves a ref to its full hash, subject and author.
	CommitInfo(ctx context.Context, ref string) (model.CommitRef, error)

	// ExpandRange lists the commits of a A..B range, oldest first.
	ExpandRange(ctx context.Context, rangeSpec string) ([]string, error)

	// RemoteURL returns the configured URL of the remote.
	RemoteURL(ctx context.Context, remote string) (string, error)
}
