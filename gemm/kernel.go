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

// microKernel computes C[ir:ir+mr, jr:jr+nr] += packedA * packedB, where
// packedA is [kc, mr] and packedB is [kc, nr] in the layout PackLHS/PackRHS
// produce. alpha has already been folded into packedA by PackLHS, so this
// loop is a pure accumulate. c's leading dimension is n.
//
// The column loop advances Lanes() columns at a time through simd.Vec so the
// accumulation widens automatically with the detected dispatch level;
// remaining columns (nr not a multiple of the lane width) fall back to a
// scalar tail.
func microKernel(packedA, packedB, c []float32, n, ir, jr, kc, mr, nr int) {
	lanes := simd.MaxLanes[float32]()

	for r := 0; r < mr; r++ {
		cRow := (ir + r) * n
		col := 0
		for ; col+lanes <= nr; col += lanes {
			acc := simd.Zero[float32]()
			for p := 0; p < kc; p++ {
				a := packedA[p*mr+r]
				vA := simd.Set(a)
				vB := simd.Load(packedB[p*nr+col:])
				acc = simd.MulAdd(vA, vB, acc)
			}
			vC := simd.Load(c[cRow+jr+col:])
			vC = simd.Add(vC, acc)
			simd.Store(vC, c[cRow+jr+col:])
		}
		for ; col < nr; col++ {
			var sum float32
			for p := 0; p < kc; p++ {
				sum += packedA[p*mr+r] * packedB[p*nr+col]
			}
			c[cRow+jr+col] += sum
		}
	}
}

// microKernelPartial is microKernel restricted to the valid (non-padding)
// rows/cols of an edge tile; the packed buffers are still the full mr x nr
// block (zero-padded by PackLHS/PackRHS) but only the valid region is
// written back to C.
func microKernelPartial(packedA, packedB, c []float32, n, ir, jr, kc, mr, nr, activeRows, activeCols int) {
	lanes := simd.MaxLanes[float32]()

	for r := 0; r < activeRows; r++ {
		cRow := (ir + r) * n
		col := 0
		for ; col+lanes <= activeCols; col += lanes {
			acc := simd.Zero[float32]()
			for p := 0; p < kc; p++ {
				vA := simd.Set(packedA[p*mr+r])
				vB := simd.Load(packedB[p*nr+col:])
				acc = simd.MulAdd(vA, vB, acc)
			}
			vC := simd.Load(c[cRow+jr+col:])
			vC = simd.Add(vC, acc)
			simd.Store(vC, c[cRow+jr+col:])
		}
		for ; col < activeCols; col++ {
			var sum float32
			for p := 0; p < kc; p++ {
				sum += packedA[p*mr+r] * packedB[p*nr+col]
			}
			c[cRow+jr+col] += sum
		}
	}
}
