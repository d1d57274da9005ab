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

// Any is a type-erased tensor: exactly one of F or I is non-nil, selected
// by DType. The graph evaluator and the operators pass tensors around as Any
// and type-switch (via AsFloat32/AsInt32) at operator boundaries rather
// than maintaining parallel dtype-specific call graphs.
type Any struct {
	dtype DType
	f     *Tensor[float32]
	i     *Tensor[int32]
}

// FromFloat32 wraps a float32 tensor as Any.
func FromFloat32(t *Tensor[float32]) Any { return Any{dtype: Float32, f: t} }

// FromInt32 wraps an int32 tensor as Any.
func FromInt32(t *Tensor[int32]) Any { return Any{dtype: Int32, i: t} }

// DType returns the wrapped tensor's element type.
func (a Any) DType() DType { return a.dtype }

// Shape returns the wrapped tensor's shape.
func (a Any) Shape() []int {
	if a.dtype == Float32 {
		return a.f.Shape()
	}
	return a.i.Shape()
}

// AsFloat32 returns the wrapped float32 tensor, or an error if a holds int32.
func (a Any) AsFloat32() (*Tensor[float32], error) {
	if a.dtype != Float32 {
		return nil, fmt.Errorf("tensor: expected float32, got %s", a.dtype)
	}
	return a.f, nil
}

// AsInt32 returns the wrapped int32 tensor, or an error if a holds float32.
func (a Any) AsInt32() (*Tensor[int32], error) {
	if a.dtype != Int32 {
		return nil, fmt.Errorf("tensor: expected int32, got %s", a.dtype)
	}
	return a.i, nil
}
