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

import "github.com/ajroetker/go-infer/simd"

// MatMul computes C := alpha*A*B + beta*C for A (m x k), B (k x n), C (m x n),
// all row-major. A shape mismatch is a programmer error and panics; callers
// (package ops) check conformance before calling.
//
// This dispatches to the parallel driver when the problem is large enough to
// amortize worker setup (see shouldParallelize), otherwise runs single-threaded.
func MatMul(a, b, c []float32, m, n, k int, alpha, beta float32) {
	if len(a) < m*k {
		panic("gemm: A slice too short")
	}
	if len(b) < k*n {
		panic("gemm: B slice too short")
	}
	if len(c) < m*n {
		panic("gemm: C slice too short")
	}

	if shouldParallelize(m, n, k) {
		parallelMatMul(a, b, c, m, n, k, alpha, beta)
		return
	}

	params := ForLevel(simd.Current())
	packedA := make([]float32, params.PackedASize())
	packedB := make([]float32, params.PackedBSize())
	matMulStrip(a, b, c, m, n, k, 0, m, alpha, beta, packedA, packedB, params)
}

// matMulStrip computes C[rowStart:rowEnd, :] := alpha*A[rowStart:rowEnd,:]*B + beta*C[rowStart:rowEnd,:]
// using caller-supplied packing buffers, so parallel callers can each own a
// private pair of scratch buffers, never sharing packing scratch between
// workers.
func matMulStrip(a, b, c []float32, m, n, k, rowStart, rowEnd int, alpha, beta float32, packedA, packedB []float32, params CacheParams) {
	mr, nr := params.Mr, params.Nr
	kc, mc, nc := params.Kc, params.Mc, params.Nc

	scaleC(c, rowStart, rowEnd, n, beta)

	for jc := 0; jc < n; jc += nc {
		jcEnd := min(jc+nc, n)
		panelCols := jcEnd - jc

		for pc := 0; pc < k; pc += kc {
			pcEnd := min(pc+kc, k)
			panelK := pcEnd - pc

			PackRHS(b, packedB, k, n, pc, jc, panelK, panelCols, nr)

			for ic := rowStart; ic < rowEnd; ic += mc {
				icEnd := min(ic+mc, rowEnd)
				panelRows := icEnd - ic

				activeRowsLast := PackLHS(a, packedA, m, k, ic, pc, panelRows, panelK, mr, alpha)
				gebp(packedA, packedB, c, n, ic, jc, panelRows, panelCols, panelK, mr, nr, activeRowsLast)
			}
		}
	}
}

// gebp is the GEneral Block Panel multiply: C[ic:ic+panelRows, jc:jc+panelCols] += packedA*packedB.
func gebp(packedA, packedB, c []float32, n, ic, jc, panelRows, panelCols, panelK, mr, nr, activeRowsLast int) {
	numA := (panelRows + mr - 1) / mr
	numB := (panelCols + nr - 1) / nr

	activeColsLast := panelCols - (numB-1)*nr
	if activeColsLast <= 0 {
		activeColsLast = nr
	}

	for jPanel := 0; jPanel < numB; jPanel++ {
		jr := jc + jPanel*nr
		bOff := jPanel * panelK * nr
		activeCols := nr
		if jPanel == numB-1 {
			activeCols = activeColsLast
		}

		for iPanel := 0; iPanel < numA; iPanel++ {
			ir := ic + iPanel*mr
			aOff := iPanel * panelK * mr
			activeRows := mr
			if iPanel == numA-1 {
				activeRows = activeRowsLast
			}

			if activeRows == mr && activeCols == nr {
				microKernel(packedA[aOff:], packedB[bOff:], c, n, ir, jr, panelK, mr, nr)
			} else {
				microKernelPartial(packedA[aOff:], packedB[bOff:], c, n, ir, jr, panelK, mr, nr, activeRows, activeCols)
			}
		}
	}
}

// scaleC applies C[rowStart:rowEnd,:] *= beta in place, or zeroes it when
// beta == 0 (the Conv-via-im2col first-write case, which must not read
// whatever garbage the pool handed back).
func scaleC(c []float32, rowStart, rowEnd, n int, beta float32) {
	lo, hi := rowStart*n, rowEnd*n
	if beta == 0 {
		clear(c[lo:hi])
		return
	}
	if beta == 1 {
		return
	}
	for i := lo; i < hi; i++ {
		c[i] *= beta
	}
}
