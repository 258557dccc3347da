// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the course-engine CLI. It imports
// course Markdown into a versioned hierarchy, applies change proposals,
// writes changes back to the Markdown sources, and publishes them as pull
// requests.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-engine/internal/secrets"
	"github.com/pdiddy/course-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration, loaded before every command.
	cfg types.Config

	// logger is the structured logger built from cfg.Log.
	logger = zerolog.Nop()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the course-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "course-engine",
	Short: "Keep course Markdown and its content hierarchy in sync",
	Long: `course-engine parses course Markdown (course, lecture, section, topic,
slide, and slide components) into a versioned SQLite hierarchy. Change
proposals are applied to the hierarchy as one all-or-nothing batch; touched
nodes are then written back into their Markdown files and, optionally,
committed to a branch with a pull request opened for review.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(viper.GetViper()); err != nil {
			return err
		}
		if logger, err = newLogger(cfg.Log, os.Stderr); err != nil {
			return err
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./course-engine.yaml or ~/.config/course-engine/course-engine.yaml)")
	rootCmd.PersistentFlags().String("db", "", "hierarchy database path (overrides store.path)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("course-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "course-engine"))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !asNotFound(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
