// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pmu_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/pmu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := pmu.Create(&buf, pmu.Int16)

	record := make([]float64, 256)
	for i := range record {
		record[i] = float64(i - 128)
	}

	// Write two batches
	require.NoError(t, sw.Write(record))
	require.NoError(t, sw.Write(record))
	require.Equal(t, 512, sw.Samples())

	// Nothing is guaranteed to reach the buffer until Close
	require.NoError(t, sw.Close())
	require.Equal(t, 1024, buf.Len())

	samples, err := pmu.DecodeSamples(&buf, pmu.Int16)
	require.NoError(t, err)
	require.Len(t, samples, 512)

	for i := range samples {
		require.Equal(t, record[i%256], samples[i])
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)

	path, err := pmu.WriteFile(dir, start, 60, pmu.Float64, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250908,000000.000000000,60,Float64.signal"), path)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(24), fi.Size())

	info, err := pmu.NewReader().Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.EstimatedDataPoints)
	assert.InDelta(t, 0.05, info.EstimatedDurationSeconds, 1e-12)

	_, err = pmu.WriteFile(dir, start, 0, pmu.Float64, []float64{1})
	assert.ErrorIs(t, err, pmu.ErrInvalidFrequency)
}
