package document

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
)

// lastCommitTime returns the committer time of the most recent commit
// touching path, looked up in the enclosing git repository. Documents without
// a frontmatter date inherit this value when git dates are enabled.
func lastCommitTime(path string) (time.Time, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, err
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return time.Time{}, fmt.Errorf("open repository for %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve worktree: %w", err)
	}

	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return time.Time{}, err
	}
	rel = filepath.ToSlash(rel)

	iter, err := repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return time.Time{}, fmt.Errorf("read log for %s: %w", rel, err)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, fmt.Errorf("no commits touch %s: %w", rel, err)
	}
	return commit.Committer.When, nil
}
