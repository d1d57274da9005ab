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

// Tensor is an N-dimensional array: a shape, matching element-unit strides,
// and a storage buffer the tensor either owns or borrows (a view). The
// element at multi-index idx lives at storage[offset + sum(idx[i]*strides[i])].
type Tensor[T Elem] struct {
	shape   []int
	strides []int
	storage []T
	offset  int
}

// New allocates a zeroed, contiguous tensor of the given shape.
func New[T Elem](shape []int) *Tensor[T] {
	n := prod(shape)
	return &Tensor[T]{
		shape:   append([]int(nil), shape...),
		strides: defaultStrides(shape),
		storage: make([]T, n),
	}
}

// FromData builds a contiguous tensor from existing flat data. len(data)
// must equal the product of shape.
func FromData[T Elem](shape []int, data []T) (*Tensor[T], error) {
	n := prod(shape)
	if len(data) != n {
		return nil, fmt.Errorf("tensor: data has %d elements, shape %v wants %d", len(data), shape, n)
	}
	return &Tensor[T]{
		shape:   append([]int(nil), shape...),
		strides: defaultStrides(shape),
		storage: data,
	}, nil
}

// FromScalar builds a rank-0 tensor holding a single value.
func FromScalar[T Elem](v T) *Tensor[T] {
	return &Tensor[T]{shape: []int{}, strides: []int{}, storage: []T{v}}
}

func prod(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// defaultStrides computes the row-major (C-contiguous) strides for shape.
func defaultStrides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// Shape returns the tensor's dimension sizes. Callers must not mutate the
// returned slice.
func (t *Tensor[T]) Shape() []int { return t.shape }

// Stride returns the element-unit stride for axis.
func (t *Tensor[T]) Stride(axis int) int { return t.strides[axis] }

// Strides returns all strides. Callers must not mutate the returned slice.
func (t *Tensor[T]) Strides() []int { return t.strides }

// NDim returns the tensor's rank.
func (t *Tensor[T]) NDim() int { return len(t.shape) }

// Len returns the number of logical elements (product of shape).
func (t *Tensor[T]) Len() int { return prod(t.shape) }

// DType returns this tensor's element type tag.
func (t *Tensor[T]) DType() DType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	default:
		return Int32
	}
}

// IsContiguous reports whether strides match the default row-major layout
// for shape (the precondition for Reshape and for Data()'s fast path).
func (t *Tensor[T]) IsContiguous() bool {
	want := defaultStrides(t.shape)
	for i, s := range t.strides {
		if t.shape[i] > 1 && s != want[i] {
			return false
		}
	}
	return true
}

// Data returns the contiguous backing slice when the tensor is contiguous
// and densely packed (offset 0, len(storage) == Len()). Operators use this
// as a fast path and fall back to the strided element loop otherwise.
func (t *Tensor[T]) Data() ([]T, bool) {
	if t.offset == 0 && len(t.storage) == t.Len() && t.IsContiguous() {
		return t.storage, true
	}
	return nil, false
}

// Offset returns the tensor's element offset into its storage.
func (t *Tensor[T]) Offset() int { return t.offset }

// Storage returns the raw backing slice a view borrows from.
func (t *Tensor[T]) Storage() []T { return t.storage }

// At returns the element at the given multi-index.
func (t *Tensor[T]) At(idx []int) T {
	return t.storage[t.linearOffset(idx)]
}

// SetAt writes v at the given multi-index.
func (t *Tensor[T]) SetAt(idx []int, v T) {
	t.storage[t.linearOffset(idx)] = v
}

func (t *Tensor[T]) linearOffset(idx []int) int {
	off := t.offset
	for i, ix := range idx {
		off += ix * t.strides[i]
	}
	return off
}

// View returns a tensor that shares storage, shape and strides with t: a
// cheap alias, distinct only in its own header.
func (t *Tensor[T]) View() *Tensor[T] {
	return &Tensor[T]{
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
		storage: t.storage,
		offset:  t.offset,
	}
}

// Clone returns a tensor with freshly allocated, contiguous storage holding
// the same logical values (equivalent to View().ToContiguous()).
func (t *Tensor[T]) Clone() *Tensor[T] {
	return t.ToContiguous()
}

// ToContiguous materializes a new tensor with the same shape, in row-major
// order, copying elements via the logical (possibly strided) iteration
// order. Always a fresh allocation, even if t is already contiguous.
func (t *Tensor[T]) ToContiguous() *Tensor[T] {
	out := New[T](t.shape)
	if data, ok := t.Data(); ok {
		copy(out.storage, data)
		return out
	}
	i := 0
	t.ForEach(func(_ []int, v T) {
		out.storage[i] = v
		i++
	})
	return out
}

// ForEach visits every logical element in row-major order of t's shape,
// calling f with the multi-index and the element's value. It is the
// strided-view fallback path used whenever Data()'s contiguous fast path is
// unavailable.
func (t *Tensor[T]) ForEach(f func(idx []int, v T)) {
	n := len(t.shape)
	if n == 0 {
		f(nil, t.storage[t.offset])
		return
	}
	idx := make([]int, n)
	for {
		f(idx, t.storage[t.linearOffset(idx)])
		axis := n - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < t.shape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// Apply maps f over every element of t in place.
func (t *Tensor[T]) Apply(f func(T) T) {
	if data, ok := t.Data(); ok {
		for i, v := range data {
			data[i] = f(v)
		}
		return
	}
	n := len(t.shape)
	if n == 0 {
		t.storage[t.offset] = f(t.storage[t.offset])
		return
	}
	idx := make([]int, n)
	for {
		off := t.linearOffset(idx)
		t.storage[off] = f(t.storage[off])
		axis := n - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < t.shape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// Map returns a new contiguous tensor holding f applied to every element of t.
func (t *Tensor[T]) Map(f func(T) T) *Tensor[T] {
	out := New[T](t.shape)
	i := 0
	t.ForEach(func(_ []int, v T) {
		out.storage[i] = f(v)
		i++
	})
	return out
}
