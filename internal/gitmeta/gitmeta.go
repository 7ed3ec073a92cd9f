// Package gitmeta reads repository metadata for publish records. Missing or
// detached repositories are not errors; builds regularly run from export
// tarballs.
package gitmeta

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Meta describes the repository state a build was produced from.
type Meta struct {
	Commit string
	Branch string
	Dirty  bool
}

// Describe walks up from dir to the enclosing repository and reads HEAD.
func Describe(dir string) (*Meta, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	meta := &Meta{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		meta.Branch = ref.Name().Short()
	}

	// Worktree status is best effort; a bare repo has none.
	if wt, werr := repo.Worktree(); werr == nil {
		if status, serr := wt.Status(); serr == nil {
			meta.Dirty = !status.IsClean()
		}
	}

	return meta, nil
}
