package site

import (
	ggit "github.com/go-git/go-git/v5"
)

// sourceRevision returns the HEAD commit of the git repository containing
// dir, or "" when dir is not inside a repository.
func sourceRevision(dir string) string {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}
