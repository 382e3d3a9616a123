package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Compile-time interface satisfaction check.
var _ interfaces.VersionControl = (*Client)(nil)

// Client drives the git binary in one working directory. Every method shells
// out to a single porcelain command; stderr is attached to returned errors.
type Client struct {
	dir string
}

// Option configures a Client.
type Option func(*Client)

// WithDir sets the working directory. Defaults to the process directory.
func WithDir(dir string) Option {
	return func(c *Client) {
		c.dir = dir
	}
}

// New creates a git client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.dir != "" {
		cmd.Dir = c.dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	ctxlog.From(ctx).Debug("running git", "args", args)

	if err := cmd.Run(); err != nil {
		return "", goerr.Wrap(err, "git command failed",
			goerr.V("args", args),
			goerr.V("stderr", strings.TrimSpace(stderr.String())))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Fetch updates remote-tracking refs for the remote.
func (c *Client) Fetch(ctx context.Context, remote string) error {
	_, err := c.run(ctx, "fetch", remote)
	return err
}

// Checkout switches the working tree to the branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	_, err := c.run(ctx, "checkout", branch)
	return err
}

// ResetHard moves the current branch to ref, discarding local changes.
func (c *Client) ResetHard(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "reset", "--hard", ref)
	return err
}

// CherryPick applies the commit onto the current branch. The -x trailer
// records the source hash in the new commit message.
func (c *Client) CherryPick(ctx context.Context, sha string) error {
	_, err := c.run(ctx, "cherry-pick", "-x", sha)
	return err
}

// CherryPickAbort cancels an in-progress cherry-pick.
func (c *Client) CherryPickAbort(ctx context.Context) error {
	_, err := c.run(ctx, "cherry-pick", "--abort")
	return err
}

// RevertHead creates a commit undoing the current tip.
func (c *Client) RevertHead(ctx context.Context) error {
	_, err := c.run(ctx, "revert", "--no-edit", "HEAD")
	return err
}

// Push updates the remote branch to the local tip.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "push", remote, branch)
	return err
}

// HeadSHA returns the full hash of the current tip.
func (c *Client) HeadSHA(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "HEAD")
}

// CommitInfo resolves a ref to its hash, subject and author. The fields are
// separated by an ASCII unit separator so subjects may contain any text. Refs
// that resolve to anything but exactly one commit are rejected.
func (c *Client) CommitInfo(ctx context.Context, ref string) (model.CommitRef, error) {
	// a range ref makes git show emit one record per commit
	if strings.Contains(ref, "..") {
		return model.CommitRef{}, goerr.New("ref must name a single commit",
			goerr.V("ref", ref))
	}

	out, err := c.run(ctx, "show", "-s", "--format=%H%x1f%s%x1f%an", ref)
	if err != nil {
		return model.CommitRef{}, err
	}

	parts := strings.Split(out, "\x1f")
	if len(parts) != 3 || strings.Contains(out, "\n") {
		return model.CommitRef{}, goerr.New("ref did not resolve to a single commit",
			goerr.V("ref", ref), goerr.V("output", out))
	}
	return model.CommitRef{
		SHA:     parts[0],
		Subject: parts[1],
		Author:  parts[2],
	}, nil
}

// ExpandRange lists the commits of an A..B range, oldest first.
func (c *Client) ExpandRange(ctx context.Context, rangeSpec string) ([]string, error) {
	out, err := c.run(ctx, "rev-list", "--reverse", rangeSpec)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// RemoteURL returns the configured URL of the remote.
func (c *Client) RemoteURL(ctx context.Context, remote string) (string, error) {
	return c.run(ctx, "remote", "get-url", remote)
}
