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

// Package simd provides a portable, generic-over-lanes vector abstraction
// used by the gemm and ops packages. It mirrors a classic SIMD API
// (Zero/Load/Store/Add/Mul/FMA/...) but the lane width is a runtime value
// derived from the detected CPU dispatch level, not a compile-time target:
// there is a single Go implementation per operation, and DispatchLevel only
// picks the blocking/tiling parameters the callers use around it.
package simd

// Floats is the set of floating-point element types this package operates on.
type Floats interface {
	~float32
}

// Integers is the set of integer element types this package operates on.
type Integers interface {
	~int32
}

// Lanes is the set of element types that can live in a Vec.
type Lanes interface {
	Floats | Integers
}

// Vec is a portable vector of NumLanes() elements of type T. The backing
// slice's length is the dispatch-level-dependent lane width; operations on
// two Vecs operate over the shorter of the two lengths.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of elements in the vector.
func (v Vec[T]) NumLanes() int { return len(v.data) }

// Data exposes the backing slice. Callers must not retain it across calls
// that reuse the vector.
func (v Vec[T]) Data() []T { return v.data }

// Mask is a per-lane boolean produced by the comparison ops
// (Equal/NotEqual/LessThan/...), consumed by IfThenElse.
type Mask[T Lanes] struct {
	bits []bool
}

// NumLanes returns the number of lanes in the mask.
func (m Mask[T]) NumLanes() int { return len(m.bits) }

// AllTrue reports whether every lane is set.
func (m Mask[T]) AllTrue() bool {
	for _, b := range m.bits {
		if !b {
			return false
		}
	}
	return true
}

// AnyTrue reports whether at least one lane is set.
func (m Mask[T]) AnyTrue() bool {
	for _, b := range m.bits {
		if b {
			return true
		}
	}
	return false
}

// CountTrue returns the number of set lanes.
func (m Mask[T]) CountTrue() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// GetBit returns the lane's boolean value.
func (m Mask[T]) GetBit(i int) bool { return m.bits[i] }
