// Package git provides Git repository utilities for toolgate.
//
// The only question the gate asks of a repository is which branch is checked
// out, and it must never wait long for the answer.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrNotGitRepo indicates the directory is not inside a Git repository
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrDetached indicates HEAD does not point at a branch
	ErrDetached = errors.New("HEAD is detached")

	// ErrTimeout indicates the lookup did not finish in time
	ErrTimeout = errors.New("branch lookup timed out")
)

// headLookup is replaced in tests.
var headLookup = headBranch

// CurrentBranch returns the branch checked out in the repository containing
// dir. Parent directories are searched for .git, and linked worktrees are
// supported.
//
// The lookup runs in its own goroutine and is abandoned after timeout or when
// ctx is done; callers treat ErrTimeout as "unknown".
//
// Example:
//
//	branch, err := git.CurrentBranch(ctx, cwd, 2*time.Second)
//	if err != nil {
//	    // no signal
//	}
func CurrentBranch(ctx context.Context, dir string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		branch string
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		branch, err := headLookup(dir)
		ch <- result{branch, err}
	}()

	select {
	case r := <-ch:
		return r.branch, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func headBranch(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotGitRepo, dir)
		}
		return "", fmt.Errorf("opening repository: %w", err)
	}

	// Read HEAD without resolving it so unborn branches still report a name.
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", ErrDetached
}

// IsProtected reports whether branch is one of the protected names.
// Comparison ignores case and a refs/heads/ prefix.
func IsProtected(branch string, protected []string) bool {
	branch = strings.TrimPrefix(branch, "refs/heads/")
	if branch == "" {
		return false
	}
	for _, p := range protected {
		if strings.EqualFold(branch, p) {
			return true
		}
	}
	return false
}
