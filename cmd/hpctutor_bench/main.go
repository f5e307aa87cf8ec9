// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// hpctutor_bench measures the kernels of the hpctutor library over a range of sizes, and
// optionally verifies the blocked and parallel kernels against their naive counterparts.
//
// Example:
//
//	hpctutor_bench -sizes=256,512,1024 -ops=gemm,gemm_block,gemm_parallel -block=64x128x128 -plot=gemm.png
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/gomlx/hpctutor/pkg/parallel"
	"github.com/gomlx/hpctutor/pkg/support/fsutil"
	"github.com/gomlx/hpctutor/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagSizes = xslices.Flag("sizes", []int{128, 256, 512},
		"Comma-separated list of matrix orders n to benchmark. Vector ops and sorts use n*n elements.",
		strconv.Atoi)
	flagOps = xslices.Flag("ops", opsOrder,
		fmt.Sprintf("Comma-separated list of ops to benchmark. Valid ops: %s.", strings.Join(opsOrder, ", ")),
		parseOp)
	flagBlock = flag.String("block", fmt.Sprintf("%dx%dx%d",
		linalg.DefaultBlockSizes.N, linalg.DefaultBlockSizes.M, linalg.DefaultBlockSizes.L),
		"GEMM tile sizes NxMxL, used by gemm_block and by the tiles of gemm_parallel.")
	flagLUBlock  = flag.Int("lu_block", linalg.DefaultLUBlockSize, "Panel width used by lufact_block.")
	flagWorkers  = flag.Int("workers", runtime.NumCPU(), "Parallel workers for the *_parallel ops: 0 runs them sequentially, -1 is unlimited.")
	flagChunk    = flag.Int("chunk", parallel.DefaultMinChunk, "Minimum amount of work per partition of the *_parallel ops.")
	flagSeed     = flag.Uint64("seed", 42, "Seed of the random inputs.")
	flagRepeat   = flag.Int("repeat", 3, "Number of timed runs per op and size, after one warm-up run.")
	flagVerify   = flag.Bool("verify", true, "Compare the output of each op with a reference and report the largest difference.")
	flagPlot     = flag.String("plot", "", "If set, save a chart of GFLOP/s per size to this file. The format (.png, .svg, .pdf) is taken from the extension.")
	flagColor    = flag.Bool("color", true, "Use colors in the output.")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while benchmarking.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if !*flagColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := exceptions.TryCatch[error](func() {
		config := must.M1(newBenchConfigFromFlags())
		results := must.M1(runAll(config))
		fmt.Println(titleStyle.Render("hpctutor kernels"))
		fmt.Println(renderResults(results))
		if *flagPlot != "" {
			plotPath := must.M1(fsutil.ReplaceTildeInPath(*flagPlot))
			must.M(savePlot(plotPath, results))
			klog.Infof("Saved plot to %q", plotPath)
		}
		if failed := countFailures(results); failed > 0 {
			must.M(errors.Errorf("%d results failed verification", failed))
		}
	})
	if err != nil {
		klog.Errorf("hpctutor_bench failed: %+v", err)
		os.Exit(1)
	}
}
