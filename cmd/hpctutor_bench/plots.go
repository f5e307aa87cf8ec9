// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// savePlot draws one line of GFLOP/s per size for each op that counts flops, and saves it to path.
func savePlot(path string, results []result) error {
	p := plot.New()
	p.Title.Text = "hpctutor kernels"
	p.X.Label.Text = "n"
	p.Y.Label.Text = "GFLOP/s"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = true

	var lines []any
	for _, op := range opsOrder {
		var points plotter.XYs
		for _, r := range results {
			if r.op == op && r.flops > 0 {
				points = append(points, plotter.XY{X: float64(r.n), Y: r.GFlopsPerSec()})
			}
		}
		if len(points) == 0 {
			continue
		}
		slices.SortFunc(points, func(a, b plotter.XY) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			}
			return 0
		})
		lines = append(lines, op, points)
	}
	if len(lines) == 0 {
		return errors.New("no results with flops to plot")
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "failed to build plot")
	}
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}
