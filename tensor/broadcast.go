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

package tensor

import "fmt"

// BroadcastShapes computes the output shape of broadcasting a against b:
// shapes are aligned from the right, left-padded with 1s, and each aligned
// pair must be equal or contain a 1. The result is symmetric in a and b.
func BroadcastShapes(a, b []int) ([]int, error) {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		da := dimAt(a, i, n)
		db := dimAt(b, i, n)
		switch {
		case da == db:
			out[n-1-i] = da
		case da == 1:
			out[n-1-i] = db
		case db == 1:
			out[n-1-i] = da
		default:
			return nil, fmt.Errorf("tensor: shapes %v and %v are not broadcast-compatible", a, b)
		}
	}
	return out, nil
}

// dimAt returns shape's dimension i places from the right end, or 1 if that
// axis doesn't exist in shape (left-padding with 1s).
func dimAt(shape []int, iFromRight, totalRank int) int {
	axis := len(shape) - 1 - iFromRight
	if axis < 0 {
		return 1
	}
	return shape[axis]
}

// FastBroadcast detects whether from's shape, padded to len(to), can be
// expressed as a (cycles, repeats) pair: the from-sequence, in its natural
// row-major order, is replayed `cycles` times with each element repeated
// `repeats` times, entirely covering `to`'s element count without a general
// strided-broadcast iterator. This holds iff the non-unit axes of from (once
// padded) form a contiguous run within to — e.g. a trailing vector
// broadcast over leading batch axes, or a leading scalar broadcast over
// everything. The scalar case degenerates to (1, N).
func FastBroadcast(from, to []int) (cycles, repeats int, ok bool) {
	pad := len(to) - len(from)
	if pad < 0 {
		return 0, 0, false
	}
	padded := make([]int, len(to))
	for i := range padded {
		if i < pad {
			padded[i] = 1
		} else {
			padded[i] = from[i-pad]
		}
	}
	for i, d := range padded {
		if d != 1 && d != to[i] {
			return 0, 0, false
		}
	}

	// "Kept" axes are where from genuinely supplies this axis (not a
	// broadcast axis); they must form one contiguous run, with every axis
	// outside that run a broadcast axis (padded[i] == 1).
	kept := make([]bool, len(to))
	firstKept, lastKept := -1, -1
	for i, d := range padded {
		if d == to[i] && to[i] != 1 {
			kept[i] = true
			if firstKept == -1 {
				firstKept = i
			}
			lastKept = i
		}
	}
	if firstKept == -1 {
		// Pure scalar broadcast.
		return 1, prod(to), true
	}
	for i := firstKept; i <= lastKept; i++ {
		if !kept[i] {
			return 0, 0, false
		}
	}

	cycles = prod(to[:firstKept])
	repeats = prod(to[lastKept+1:])
	return cycles, repeats, true
}
