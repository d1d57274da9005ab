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

// Package tensor implements the strided-view N-dimensional array that
// underlies every operator in package ops: contiguous buffers, permuted or
// broadcast views over them, and the pool that recycles buffers between
// operator invocations.
package tensor

// Elem is the closed set of element types a Tensor can hold: 32-bit float
// and 32-bit signed integer.
type Elem interface {
	~float32 | ~int32
}

// DType tags a type-erased tensor's element type (see Any).
type DType int

const (
	Float32 DType = iota
	Int32
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}
