// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gemm

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-infer/simd"
)

// minParallelOps is the FLOP-proportional threshold below which
// parallelizing isn't worth the worker setup cost.
const minParallelOps = 64 * 64 * 64

// rowsPerStrip bounds how many rows of C each worker claims per strip,
// balancing load against cache-friendly strip sizes.
const rowsPerStrip = 64

func shouldParallelize(m, n, k int) bool {
	return m*n*k >= minParallelOps && runtime.GOMAXPROCS(0) > 1 && m > 1
}

// parallelMatMul partitions the M dimension into row strips and runs one
// goroutine per strip via errgroup, each with its own packedA/packedB
// buffers (never shared across workers). B is read-only and
// shared; strips write disjoint row ranges of C so there is no data race
// and no ordering requirement between strips.
func parallelMatMul(a, b, c []float32, m, n, k int, alpha, beta float32) {
	params := ForLevel(simd.Current())
	numStrips := (m + rowsPerStrip - 1) / rowsPerStrip

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for strip := 0; strip < numStrips; strip++ {
		rowStart := strip * rowsPerStrip
		rowEnd := min(rowStart+rowsPerStrip, m)
		g.Go(func() error {
			packedA := make([]float32, params.PackedASize())
			packedB := make([]float32, params.PackedBSize())
			matMulStrip(a, b, c, m, n, k, rowStart, rowEnd, alpha, beta, packedA, packedB, params)
			return nil
		})
	}
	_ = g.Wait()
}
