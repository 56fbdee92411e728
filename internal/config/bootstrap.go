package config

import (
	"os"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// EnsureDirectories creates the content, template and output directories if
// they are missing. Existing directories are left alone.
func EnsureDirectories(s *Settings) error {
	for _, dir := range []string{s.Site.ContentDir, s.Site.TemplateDir, s.Site.OutputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.FileSystemError("failed to create directory").
				WithCause(err).
				WithContext("dir", dir).
				Build()
		}
	}
	return nil
}
