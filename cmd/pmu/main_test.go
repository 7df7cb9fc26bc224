// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenPSG/pmu"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSignal(t *testing.T, dir string) string {
	t.Helper()
	values := make([]float64, 183)
	copy(values[180:], []float64{1.5, -2.25, 3.0})
	path, err := pmu.WriteFile(dir, time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC), 60, pmu.Float32, values)
	require.NoError(t, err)
	return path
}

func TestReadCmd(t *testing.T) {
	path := writeSignal(t, t.TempDir())

	out, logs, err := run(t, "read", "--head", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Samples:     183")
	assert.Contains(t, out, "Time range:  2025-09-08 00:00:00.000000 to 2025-09-08 00:00:03.033333")
	assert.Contains(t, out, "Non-zero range: -2.25 to 3")
	assert.Contains(t, logs, "Processing PMU signal file")
}

func TestReadCmdQuiet(t *testing.T) {
	path := writeSignal(t, t.TempDir())

	_, logs, err := run(t, "--log-level", "error", "read", path)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestReadCmdError(t *testing.T) {
	_, _, err := run(t, "read", filepath.Join(t.TempDir(), "missing.signal"))
	assert.ErrorIs(t, err, pmu.ErrNotFound)
}

func TestInspectCmdJSON(t *testing.T) {
	path := writeSignal(t, t.TempDir())

	out, _, err := run(t, "inspect", "--json", path)
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, float64(183), info["estimated_data_points"])
	assert.Equal(t, float64(60), info["frequency_hz"])
	assert.Equal(t, "Float32", info["data_type"])
}

func TestExportCmd(t *testing.T) {
	path := writeSignal(t, t.TempDir())
	outDir := filepath.Join(t.TempDir(), "csv")

	out, _, err := run(t, "export", "--out", outDir, path)
	require.NoError(t, err)
	assert.Contains(t, out, "183 rows")

	data, err := os.ReadFile(filepath.Join(outDir, "20250908,000000.000000000,60,Float32_analysis.csv"))
	require.NoError(t, err)
	assert.Equal(t, 184, bytes.Count(data, []byte("\n")))
}

func TestExportCmdFloat32Values(t *testing.T) {
	dir := t.TempDir()
	path, err := pmu.WriteFile(dir, time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC), 60, pmu.Float32, []float64{0, 0.1})
	require.NoError(t, err)
	outDir := filepath.Join(t.TempDir(), "csv")

	_, _, err = run(t, "export", "--out", outDir, path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "20250908,000000.000000000,60,Float32_analysis.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2025-09-08T00:00:00.016666666Z,0.1\n")
}

func TestListCmd(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "PhaseA", "2025", "09")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeSignal(t, sub)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	out, _, err := run(t, "list", dir)
	require.NoError(t, err)
	assert.Equal(t, " 1. "+filepath.Join("PhaseA", "2025", "09", "20250908,000000.000000000,60,Float32.signal")+"\n", out)
}
