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

// PackLHS packs A[rowStart:rowStart+panelRows, colStart:colStart+panelK]
// (A is m x k, row-major) into packed, laid out as ceil(panelRows/mr)
// micro-panels of [panelK, mr] (K-first so the micro-kernel's K loop reads
// mr contiguous values per step). The final micro-panel is zero-padded to
// mr rows when panelRows is not a multiple of mr; every cell of packed is
// written, either with an input value or a zero, per the packing
// post-condition. alpha scales every packed value, so the micro-kernel
// itself never needs a separate alpha multiply.
//
// Returns the number of valid (non-padding) rows in the last micro-panel.
func PackLHS(a, packed []float32, m, k, rowStart, colStart, panelRows, panelK, mr int, alpha float32) int {
	numPanels := (panelRows + mr - 1) / mr
	activeLast := panelRows - (numPanels-1)*mr

	full := numPanels
	if activeLast < mr {
		full--
	}

	idx := 0
	for panel := 0; panel < full; panel++ {
		base := rowStart + panel*mr
		for kk := 0; kk < panelK; kk++ {
			for r := 0; r < mr; r++ {
				packed[idx] = alpha * a[(base+r)*k+colStart+kk]
				idx++
			}
		}
	}

	if activeLast < mr && activeLast > 0 {
		base := rowStart + full*mr
		for kk := 0; kk < panelK; kk++ {
			for r := 0; r < activeLast; r++ {
				packed[idx] = alpha * a[(base+r)*k+colStart+kk]
				idx++
			}
			for r := activeLast; r < mr; r++ {
				packed[idx] = 0
				idx++
			}
		}
	}

	// Zero any spare capacity the loops above left untouched, so the
	// every-cell-written invariant holds even if a tile loop is off by one.
	clear(packed[idx : numPanels*mr*panelK])

	return activeLast
}

// PackRHS packs B[rowStart:rowStart+panelK, colStart:colStart+panelCols]
// (B is k x n, row-major) into packed, laid out as ceil(panelCols/nr)
// micro-panels of [panelK, nr]. The final micro-panel is zero-padded in the
// column dimension. Unit-stride rows take a straight copy.
//
// Returns the number of valid columns in the last micro-panel.
func PackRHS(b, packed []float32, k, n, rowStart, colStart, panelK, panelCols, nr int) int {
	numPanels := (panelCols + nr - 1) / nr
	activeLast := panelCols - (numPanels-1)*nr

	full := numPanels
	if activeLast < nr {
		full--
	}

	idx := 0
	for panel := 0; panel < full; panel++ {
		base := colStart + panel*nr
		for kk := 0; kk < panelK; kk++ {
			rowOff := (rowStart + kk) * n
			copy(packed[idx:idx+nr], b[rowOff+base:rowOff+base+nr])
			idx += nr
		}
	}

	if activeLast < nr && activeLast > 0 {
		base := colStart + full*nr
		for kk := 0; kk < panelK; kk++ {
			rowOff := (rowStart + kk) * n
			copy(packed[idx:idx+activeLast], b[rowOff+base:rowOff+base+activeLast])
			idx += activeLast
			for c := activeLast; c < nr; c++ {
				packed[idx] = 0
				idx++
			}
		}
	}

	// Zero any spare capacity the loops above left untouched, so the
	// every-cell-written invariant holds even if a tile loop is off by one.
	clear(packed[idx : numPanels*panelK*nr])

	return activeLast
}
