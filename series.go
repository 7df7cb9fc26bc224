// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pmu

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Summary holds descriptive statistics of a series. Min and Max ignore NaN
// samples, which are counted separately in NaN; a NaN sample still counts
// as non-zero.
type Summary struct {
	Count      int
	Min        float64
	Max        float64
	Zero       int
	NonZero    int
	NaN        int
	NonZeroMin float64 // Only meaningful when NonZero > NaN
	NonZeroMax float64
}

// Values returns the sample values in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, sample := range s {
		values[i] = sample.Value
	}
	return values
}

// Duration is the time between the first and last sample.
func (s Series) Duration() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Time.Sub(s[0].Time)
}

// Summary computes descriptive statistics over the series.
func (s Series) Summary() Summary {
	sum := Summary{Count: len(s)}
	if len(s) == 0 {
		return sum
	}

	values := s.Values()
	sum.Min = floats.Min(values)
	sum.Max = floats.Max(values)

	nonZero := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			sum.NaN++
		}
		if v == 0 {
			sum.Zero++
			continue
		}
		nonZero = append(nonZero, v)
	}
	sum.NonZero = len(nonZero)
	if sum.NonZero > sum.NaN {
		sum.NonZeroMin = floats.Min(nonZero)
		sum.NonZeroMax = floats.Max(nonZero)
	}

	return sum
}

// WriteCSV writes the series as timestamp,value rows with a header. Values
// are formatted at the precision of dt, the encoding they were decoded from.
func (s Series) WriteCSV(w io.Writer, dt DataType) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"timestamp", "value"}); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for _, sample := range s {
		row := []string{
			sample.Time.Format(time.RFC3339Nano),
			dt.FormatValue(sample.Value),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
