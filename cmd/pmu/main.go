// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package main provides the CLI entrypoint for pmu.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenPSG/pmu"
	"github.com/OpenPSG/pmu/internal/config"
	"github.com/OpenPSG/pmu/internal/plot"
)

const (
	defaultLogLevel  = "info"
	defaultHead      = 10
	defaultExportDir = "data/temp"
)

type app struct {
	configPath string
	logLevel   string
	cfg        config.FileConfig
	reader     *pmu.Reader

	head     int
	asJSON   bool
	outDir   string
	plotW    float64
	plotH    float64
	plotName string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "pmu",
		Short:         "Read and inspect PMU signal captures",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "path to TOML config")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(a.newReadCmd())
	rootCmd.AddCommand(a.newInspectCmd())
	rootCmd.AddCommand(a.newExportCmd())
	rootCmd.AddCommand(a.newPlotCmd())
	rootCmd.AddCommand(newListCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	if !cmd.Flags().Changed("log-level") && cfg.Reader.LogLevel != nil {
		a.logLevel = *cfg.Reader.LogLevel
	}
	level, err := config.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	a.reader = pmu.NewReader(pmu.WithLogger(logger))
	return nil
}

func (a *app) newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Decode a signal file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runRead,
	}
	cmd.Flags().IntVar(&a.head, "head", defaultHead, "number of leading samples to print")
	return cmd
}

func (a *app) runRead(cmd *cobra.Command, args []string) error {
	series, err := a.reader.Read(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sum := series.Summary()
	fmt.Fprintf(out, "Samples:     %d\n", sum.Count)
	fmt.Fprintf(out, "Time range:  %s to %s\n", formatTime(series[0].Time), formatTime(series[len(series)-1].Time))
	fmt.Fprintf(out, "Duration:    %s\n", series.Duration())
	fmt.Fprintf(out, "Value range: %g to %g\n", sum.Min, sum.Max)
	fmt.Fprintf(out, "Zero values: %d\n", sum.Zero)
	fmt.Fprintf(out, "Non-zero:    %d\n", sum.NonZero)
	if sum.NaN > 0 {
		fmt.Fprintf(out, "NaN values:  %d\n", sum.NaN)
	}
	if sum.NonZero > sum.NaN {
		fmt.Fprintf(out, "Non-zero range: %g to %g\n", sum.NonZeroMin, sum.NonZeroMax)
	}

	n := min(a.head, len(series))
	if n > 0 {
		fmt.Fprintln(out)
		for i := 0; i < n; i++ {
			fmt.Fprintf(out, "%6d  %s  %g\n", i, formatTime(series[i].Time), series[i].Value)
		}
	}
	return nil
}

func (a *app) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show file metadata without decoding samples",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runInspect,
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "print metadata as JSON")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	info, err := a.reader.Inspect(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "File:       %s\n", info.FilePath)
	fmt.Fprintf(out, "Size:       %d bytes\n", info.FileSizeBytes)
	fmt.Fprintf(out, "Start:      %s\n", formatTime(info.StartTime))
	fmt.Fprintf(out, "Frequency:  %d Hz\n", info.FrequencyHz)
	fmt.Fprintf(out, "Data type:  %s (%d bytes/point)\n", info.DataType, info.BytesPerPoint)
	fmt.Fprintf(out, "Points:     %d (estimated)\n", info.EstimatedDataPoints)
	fmt.Fprintf(out, "Duration:   %.3fs (estimated)\n", info.EstimatedDurationSeconds)
	return nil
}

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a signal file to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runExport,
	}
	cmd.Flags().StringVar(&a.outDir, "out", defaultExportDir, "output directory")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("out") && a.cfg.Export.Dir != nil {
		a.outDir = *a.cfg.Export.Dir
	}

	series, err := a.reader.Read(args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(a.outDir, baseName(args[0])+"_analysis.csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	if err := series.WriteCSV(f, dataTypeOf(args[0])); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close csv: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "CSV exported to %s (%d rows)\n", path, len(series))
	return nil
}

func (a *app) newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "Render a signal file as a line plot",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runPlot,
	}
	cmd.Flags().StringVar(&a.plotName, "out", "", "output image path (default: <name>.png beside the input)")
	cmd.Flags().Float64Var(&a.plotW, "width", plot.DefaultWidth, "plot width in inches")
	cmd.Flags().Float64Var(&a.plotH, "height", plot.DefaultHeight, "plot height in inches")
	return cmd
}

func (a *app) runPlot(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("width") && a.cfg.Plot.Width != nil {
		a.plotW = *a.cfg.Plot.Width
	}
	if !cmd.Flags().Changed("height") && a.cfg.Plot.Height != nil {
		a.plotH = *a.cfg.Plot.Height
	}

	series, err := a.reader.Read(args[0])
	if err != nil {
		return err
	}

	path := a.plotName
	if path == "" {
		path = filepath.Join(filepath.Dir(args[0]), baseName(args[0])+".png")
	}
	if err := plot.Save(path, "PMU Signal "+baseName(args[0]), series, a.plotW, a.plotH); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Plot written to %s\n", path)
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List signal files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := listSignalFiles(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, f := range files {
				fmt.Fprintf(out, "%2d. %s\n", i+1, f)
			}
			return nil
		},
	}
}

// listSignalFiles returns signal files under root, relative to it, sorted.
func listSignalFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), pmu.Extension) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// dataTypeOf returns the encoding named by a signal file's name. Read has
// already validated the name, so parse failures fall back to the default.
func dataTypeOf(path string) pmu.DataType {
	desc, err := pmu.ParseFilename(filepath.Base(path))
	if err != nil {
		return pmu.DefaultDataType
	}
	dt, _ := pmu.ParseDataType(desc.DataType)
	return dt
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), pmu.Extension)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000000")
}
