// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package plot renders signal series as line plots.
package plot

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/OpenPSG/pmu"
)

// Default plot size in inches.
const (
	DefaultWidth  = 14.0
	DefaultHeight = 6.0
)

// Segments converts a series to runs of plot points, x being seconds since
// the first sample. NaN and infinite samples end the current run, so
// dropouts show as gaps in the line.
func Segments(series pmu.Series) []plotter.XYs {
	if len(series) == 0 {
		return nil
	}

	var segs []plotter.XYs
	var cur plotter.XYs
	start := series[0].Time
	for _, s := range series {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: s.Time.Sub(start).Seconds(), Y: s.Value})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// New builds a line plot of the series.
func New(title string, series pmu.Series) (*plot.Plot, error) {
	segs := Segments(series)
	if len(segs) == 0 {
		return nil, fmt.Errorf("series has no finite samples")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Seconds since %s", series[0].Time.Format("2006-01-02 15:04:05.000000"))
	p.Y.Label.Text = "Value"
	p.Add(plotter.NewGrid())

	for _, pts := range segs {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %w", err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
	}

	return p, nil
}

// Save renders the series to path. The image format follows the file
// extension.
func Save(path, title string, series pmu.Series, width, height float64) error {
	p, err := New(title, series)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
