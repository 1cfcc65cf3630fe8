// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command scaffold generates pytest scaffolding from Python sources.
//
// Usage:
//
//	scaffold generate ./src
//	scaffold generate ./src --coverage full --output tests
//	scaffold inspect ./src/util/math.py
//	scaffold watch ./src
//
// With a config file:
//
//	scaffold generate ./src --config scaffold.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

// Flag values shared across commands.
var (
	configPath     string
	coverageFlag   string
	mockFlag       string
	outputDir      string
	includePrivate bool
	noFixtures     bool
	noParametrize  bool
	maxLines       int
	noSplit        bool
	verbose        bool
	traceEnabled   bool
)

func main() {
	root := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate pytest scaffolding from Python sources",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "emit spans to stderr")

	generateCmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Generate test files for a source file or directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerateCommand,
	}
	generateCmd.Flags().StringVar(&coverageFlag, "coverage", "", "coverage level: happy_path, comprehensive, or full")
	generateCmd.Flags().StringVar(&mockFlag, "mocks", "", "mock level: none, basic, or comprehensive")
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for generated test files")
	generateCmd.Flags().BoolVar(&includePrivate, "include-private", false, "generate tests for single-underscore symbols")
	generateCmd.Flags().BoolVar(&noFixtures, "no-fixtures", false, "disable fixture generation")
	generateCmd.Flags().BoolVar(&noParametrize, "no-parametrize", false, "disable parametrized case tables")
	generateCmd.Flags().IntVar(&maxLines, "max-lines", 0, "line budget per generated file")
	generateCmd.Flags().BoolVar(&noSplit, "no-split", false, "never split output across multiple files")

	inspectCmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the candidates a source file would produce",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCommand,
	}
	inspectCmd.Flags().BoolVar(&includePrivate, "include-private", false, "include single-underscore symbols")

	watchCmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Regenerate test files when sources change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchCommand,
	}
	watchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for generated test files")

	root.AddCommand(generateCmd, inspectCmd, watchCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file if given, then applies explicit
// flag overrides on top.
func resolveConfig(cmd *cobra.Command) (*config.Configuration, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("coverage") {
		cfg.CoverageLevel = config.CoverageLevel(coverageFlag)
	}
	if cmd.Flags().Changed("mocks") {
		cfg.MockLevel = config.MockLevel(mockFlag)
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("include-private") {
		cfg.IncludePrivate = includePrivate
	}
	if cmd.Flags().Changed("no-fixtures") {
		cfg.GenerateFixtures = !noFixtures
	}
	if cmd.Flags().Changed("no-parametrize") {
		cfg.GenerateParametrize = !noParametrize
	}
	if cmd.Flags().Changed("max-lines") {
		cfg.MaxLinesPerFile = maxLines
	}
	if cmd.Flags().Changed("no-split") {
		cfg.SplitLargeFiles = !noSplit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
