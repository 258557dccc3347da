// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/pkg/types"
)

const envPrefix = "COURSE_ENGINE"

// setDefaults registers every configuration key so environment variables
// such as COURSE_ENGINE_STORE_PATH resolve through AutomaticEnv.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "content/index/course.db")
	v.SetDefault("content.root", "content/courses")
	v.SetDefault("import.enabled", true)
	v.SetDefault("import.workers", 4)
	v.SetDefault("writeback.default_file", "general.md")
	v.SetDefault("writeback.buckets", []types.Bucket{})
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.repo_dir", ".")
	v.SetDefault("publish.remote", "origin")
	v.SetDefault("publish.base_branch", "main")
	v.SetDefault("publish.branch_prefix", "content-sync")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the merged viper state into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

func asNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	return errors.As(err, target)
}

// newLogger builds the process logger. Format "json" writes one JSON object
// per line; anything else writes human-readable console output.
func newLogger(c types.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if c.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(c.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", c.Level, err)
		}
		level = l
	}

	out := w
	if c.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// openStore opens the hierarchy database named by the configuration.
func openStore() (*hierarchy.Store, error) {
	return hierarchy.Open(cfg.Store, logger)
}
