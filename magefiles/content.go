//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Content groups targets that drive the built CLI against content/.
type Content mg.Namespace

func bin() string { return filepath.Join(binDir, binName) }

// Import parses every course file under content/courses into the index.
func (Content) Import() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "import", "content/courses")
}

// Export writes the whole hierarchy to content/export/courses.yaml.
func (Content) Export() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "export", "--format", "yaml", "--out", "content/export/courses.yaml")
}

// DryRun validates a proposals file without committing it.
func (Content) DryRun(file string) error {
	mg.Deps(Build)
	return sh.RunV(bin(), "apply", "--dry-run", file)
}
