package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/drover/pkg/infra/git"
	"github.com/m-mizutani/gt"
)

// testRepo is a throwaway git repository for exercising the real binary.
type testRepo struct {
	t   *testing.T
	dir string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	repo := &testRepo{t: t, dir: t.TempDir()}
	repo.git("init", "-q", "-b", "main")
	repo.git("config", "user.email", "dev@example.com")
	repo.git("config", "user.name", "Dev")
	repo.git("config", "commit.gpgsign", "false")
	return repo
}

func (r *testRepo) git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func (r *testRepo) commitFile(name, content, subject string) string {
	r.t.Helper()
	gt.NoError(r.t, os.WriteFile(filepath.Join(r.dir, name), []byte(content), 0644))
	r.git("add", ".")
	r.git("commit", "-q", "-m", subject)
	return r.git("rev-parse", "HEAD")
}

func TestClient_CommitInfo(t *testing.T) {
	repo := newTestRepo(t)
	sha := repo.commitFile("a.txt", "one", "feat: add a")

	client := git.New(git.WithDir(repo.dir))
	ref, err := client.CommitInfo(context.Background(), "HEAD")

	gt.NoError(t, err)
	gt.Equal(t, ref.SHA, sha)
	gt.Equal(t, ref.Subject, "feat: add a")
	gt.Equal(t, ref.Author, "Dev")
}

func TestClient_CommitInfo_UnknownRef(t *testing.T) {
	repo := newTestRepo(t)
	repo.commitFile("a.txt", "one", "init")

	client := git.New(git.WithDir(repo.dir))
	_, err := client.CommitInfo(context.Background(), "deadbeef")
	gt.Error(t, err)
}

func TestClient_CommitInfo_RejectsRange(t *testing.T) {
	repo := newTestRepo(t)
	first := repo.commitFile("a.txt", "one", "first")
	repo.commitFile("b.txt", "two", "second")
	repo.commitFile("c.txt", "three", "third")

	// git show on a range prints one record per commit; that must never be
	// folded into a single CommitRef
	client := git.New(git.WithDir(repo.dir))
	_, err := client.CommitInfo(context.Background(), first+"..HEAD")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("single commit")
}

func TestClient_ExpandRange(t *testing.T) {
	repo := newTestRepo(t)
	first := repo.commitFile("a.txt", "one", "first")
	second := repo.commitFile("b.txt", "two", "second")
	third := repo.commitFile("c.txt", "three", "third")

	client := git.New(git.WithDir(repo.dir))
	shas, err := client.ExpandRange(context.Background(), first+"..HEAD")

	// Oldest first, excluding the range start
	gt.NoError(t, err)
	gt.Equal(t, len(shas), 2)
	gt.Equal(t, shas[0], second)
	gt.Equal(t, shas[1], third)

	// An empty range expands to nothing
	shas, err = client.ExpandRange(context.Background(), "HEAD..HEAD")
	gt.NoError(t, err)
	gt.Equal(t, len(shas), 0)
}

func TestClient_CherryPickAndRevert(t *testing.T) {
	repo := newTestRepo(t)
	repo.commitFile("base.txt", "base", "base")
	repo.git("branch", "staging")

	// A commit on main for staging to pick
	picked := repo.commitFile("feature.txt", "feature", "feat: add feature")

	client := git.New(git.WithDir(repo.dir))
	ctx := context.Background()

	gt.NoError(t, client.Checkout(ctx, "staging"))
	before, err := client.HeadSHA(ctx)
	gt.NoError(t, err)

	gt.NoError(t, client.CherryPick(ctx, picked))

	after, err := client.HeadSHA(ctx)
	gt.NoError(t, err)
	gt.Value(t, after).NotEqual(before)

	// The picked change landed
	_, err = os.Stat(filepath.Join(repo.dir, "feature.txt"))
	gt.NoError(t, err)

	// The -x trailer references the source commit
	msg := repo.git("log", "-1", "--format=%B")
	gt.String(t, msg).Contains(picked)

	// Reverting drops the change again
	gt.NoError(t, client.RevertHead(ctx))
	_, err = os.Stat(filepath.Join(repo.dir, "feature.txt"))
	gt.Error(t, err)
}

func TestClient_CherryPickConflictAndAbort(t *testing.T) {
	repo := newTestRepo(t)
	repo.commitFile("shared.txt", "base\n", "base")
	repo.git("branch", "staging")

	// Both branches edit the same line differently
	conflicting := repo.commitFile("shared.txt", "from main\n", "edit on main")

	client := git.New(git.WithDir(repo.dir))
	ctx := context.Background()

	gt.NoError(t, client.Checkout(ctx, "staging"))
	repo.commitFile("shared.txt", "from staging\n", "edit on staging")

	err := client.CherryPick(ctx, conflicting)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("git command failed")

	gt.NoError(t, client.CherryPickAbort(ctx))

	// The working tree is clean again
	status := repo.git("status", "--porcelain")
	gt.Equal(t, status, "")
}

func TestClient_ResetHard(t *testing.T) {
	repo := newTestRepo(t)
	first := repo.commitFile("a.txt", "one", "first")
	repo.commitFile("b.txt", "two", "second")

	client := git.New(git.WithDir(repo.dir))
	ctx := context.Background()

	gt.NoError(t, client.ResetHard(ctx, first))

	head, err := client.HeadSHA(ctx)
	gt.NoError(t, err)
	gt.Equal(t, head, first)

	_, err = os.Stat(filepath.Join(repo.dir, "b.txt"))
	gt.Error(t, err)
}

func TestClient_RemoteURL(t *testing.T) {
	repo := newTestRepo(t)
	repo.commitFile("a.txt", "one", "init")
	repo.git("remote", "add", "origin", "git@github.com:acme/widget.git")

	client := git.New(git.WithDir(repo.dir))
	url, err := client.RemoteURL(context.Background(), "origin")

	gt.NoError(t, err)
	gt.Equal(t, url, "git@github.com:acme/widget.git")
}

func TestClient_FetchAndPush(t *testing.T) {
	repo := newTestRepo(t)
	repo.commitFile("a.txt", "one", "init")

	// A bare sibling repository acts as the remote
	remoteDir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", "--bare", remoteDir)
	gt.NoError(t, cmd.Run())
	repo.git("remote", "add", "origin", remoteDir)

	client := git.New(git.WithDir(repo.dir))
	ctx := context.Background()

	gt.NoError(t, client.Push(ctx, "origin", "main"))
	gt.NoError(t, client.Fetch(ctx, "origin"))

	// The remote tracking ref now matches local HEAD
	head, err := client.HeadSHA(ctx)
	gt.NoError(t, err)
	gt.Equal(t, repo.git("rev-parse", "origin/main"), head)
}
