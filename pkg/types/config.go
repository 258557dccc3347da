// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoreConfig holds settings for the hierarchy and version store.
type StoreConfig struct {
	// Path is the SQLite database file (default content/index/course.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ContentConfig locates the Markdown sources that write-back edits.
type ContentConfig struct {
	// Root is the directory holding course Markdown files. Relative file
	// names from classification are resolved against it.
	Root string `json:"root" yaml:"root" mapstructure:"root"`
}

// ImportConfig holds settings for the import stage.
type ImportConfig struct {
	// Enabled gates the import command. When false, nothing is parsed.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Workers bounds how many files are parsed concurrently (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Bucket is one keyword bucket for write-back file classification.
type Bucket struct {
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	File     string   `json:"file" yaml:"file" mapstructure:"file"`
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// WritebackConfig holds settings for re-inserting nodes into source files.
type WritebackConfig struct {
	// DefaultFile receives nodes no classifier could place.
	DefaultFile string `json:"default_file" yaml:"default_file" mapstructure:"default_file"`

	// Buckets overrides the built-in keyword buckets when non-empty.
	Buckets []Bucket `json:"buckets" yaml:"buckets" mapstructure:"buckets"`
}

// PublishConfig holds settings for the commit and pull-request collaborator.
type PublishConfig struct {
	// Enabled turns publishing on after a successful apply.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// RepoDir is the working tree git runs in (default ".").
	RepoDir string `json:"repo_dir" yaml:"repo_dir" mapstructure:"repo_dir"`

	// Remote is the git remote pushed to (default "origin").
	Remote string `json:"remote" yaml:"remote" mapstructure:"remote"`

	// BaseBranch is the pull-request target (default "main").
	BaseBranch string `json:"base_branch" yaml:"base_branch" mapstructure:"base_branch"`

	// BranchPrefix prefixes content-derived branch names (default "content-sync").
	BranchPrefix string `json:"branch_prefix" yaml:"branch_prefix" mapstructure:"branch_prefix"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" for human output or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Content   ContentConfig   `json:"content" yaml:"content" mapstructure:"content"`
	Import    ImportConfig    `json:"import" yaml:"import" mapstructure:"import"`
	Writeback WritebackConfig `json:"writeback" yaml:"writeback" mapstructure:"writeback"`
	Publish   PublishConfig   `json:"publish" yaml:"publish" mapstructure:"publish"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
