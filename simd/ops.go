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

package simd

// MaxLanes returns the vector width used for type T: CurrentLanes() for both
// Floats and Integers, since this system only ever packs float32/int32 at
// the same element size.
func MaxLanes[T Lanes]() int { return currentLanes }

// Zero returns the zero vector at the current lane width.
func Zero[T Lanes]() Vec[T] {
	return Vec[T]{data: make([]T, currentLanes)}
}

// Set returns a vector with every lane set to v.
func Set[T Lanes](v T) Vec[T] {
	data := make([]T, currentLanes)
	for i := range data {
		data[i] = v
	}
	return Vec[T]{data: data}
}

// Load reads MaxLanes[T]() elements starting at s[0]. The caller must
// ensure len(s) >= MaxLanes[T](); every caller loads only whole-lane
// chunks and handles any remainder with a scalar tail.
func Load[T Lanes](s []T) Vec[T] {
	n := currentLanes
	data := make([]T, n)
	copy(data, s[:n])
	return Vec[T]{data: data}
}

// Store writes v's lanes into dst[0:NumLanes()].
func Store[T Lanes](v Vec[T], dst []T) {
	copy(dst[:len(v.data)], v.data)
}

// Add returns a+b lane-wise.
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = a.data[i] + b.data[i]
	}
	return Vec[T]{data: out}
}

// Sub returns a-b lane-wise.
func Sub[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = a.data[i] - b.data[i]
	}
	return Vec[T]{data: out}
}

// Mul returns a*b lane-wise.
func Mul[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = a.data[i] * b.data[i]
	}
	return Vec[T]{data: out}
}

// MulAdd returns a*b+c lane-wise, the fused multiply-add in the
// micro-kernel's accumulator.
func MulAdd[T Lanes](a, b, c Vec[T]) Vec[T] {
	n := min(len(a.data), min(len(b.data), len(c.data)))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = a.data[i]*b.data[i] + c.data[i]
	}
	return Vec[T]{data: out}
}

// Equal performs element-wise equality comparison.
func Equal[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] == b.data[i]
	}
	return Mask[T]{bits: bits}
}

// NotEqual performs element-wise inequality comparison.
func NotEqual[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] != b.data[i]
	}
	return Mask[T]{bits: bits}
}

// LessThan performs element-wise less-than comparison.
func LessThan[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] < b.data[i]
	}
	return Mask[T]{bits: bits}
}

// LessEqual performs element-wise less-than-or-equal comparison.
func LessEqual[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] <= b.data[i]
	}
	return Mask[T]{bits: bits}
}

// GreaterThan performs element-wise greater-than comparison.
func GreaterThan[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] > b.data[i]
	}
	return Mask[T]{bits: bits}
}

// GreaterEqual performs element-wise greater-than-or-equal comparison.
func GreaterEqual[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = a.data[i] >= b.data[i]
	}
	return Mask[T]{bits: bits}
}

// IfThenElse performs conditional selection: a's lane where mask is set,
// b's otherwise.
func IfThenElse[T Lanes](mask Mask[T], a, b Vec[T]) Vec[T] {
	n := min(len(mask.bits), min(len(a.data), len(b.data)))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		if mask.bits[i] {
			out[i] = a.data[i]
		} else {
			out[i] = b.data[i]
		}
	}
	return Vec[T]{data: out}
}

// RebindMask reinterprets a mask for vectors of another lane type, so a
// comparison on int32 lanes can select float32 lanes of the same width.
func RebindMask[To, From Lanes](m Mask[From]) Mask[To] {
	return Mask[To]{bits: m.bits}
}
