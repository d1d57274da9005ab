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

// Range is a per-axis [Start, End) slice bound with ±1 Step, mirroring the
// Slice operator's attribute shape.
type Range struct {
	Start, End, Step int
}

// Slice returns a view over the given per-axis ranges. Negative Start/End
// wrap from the end of the axis, as in Python/NumPy slicing. A Step other
// than ±1 is rejected by the caller (package ops returns UnsupportedValue);
// this layer only implements ±1.
func (t *Tensor[T]) Slice(ranges []Range) (*Tensor[T], error) {
	if len(ranges) > t.NDim() {
		return nil, fmt.Errorf("tensor: slice has %d ranges for rank %d tensor", len(ranges), t.NDim())
	}
	shape := make([]int, t.NDim())
	strides := make([]int, t.NDim())
	offset := t.offset
	copy(shape, t.shape)
	copy(strides, t.strides)

	for axis, r := range ranges {
		dim := t.shape[axis]
		start, end := normalizeRange(r.Start, r.End, dim)
		if r.Step != 1 && r.Step != -1 {
			return nil, fmt.Errorf("tensor: slice step %d unsupported on axis %d", r.Step, axis)
		}
		if start < 0 || start > dim || end < start || end > dim {
			return nil, fmt.Errorf("tensor: slice range [%d,%d) out of bounds for axis %d (dim %d)", r.Start, r.End, axis, dim)
		}
		if r.Step == 1 {
			offset += start * t.strides[axis]
			shape[axis] = end - start
			strides[axis] = t.strides[axis]
		} else {
			// Reverse: start at end-1, count down.
			offset += (end - 1) * t.strides[axis]
			shape[axis] = end - start
			strides[axis] = -t.strides[axis]
		}
	}

	return &Tensor[T]{shape: shape, strides: strides, storage: t.storage, offset: offset}, nil
}

func normalizeRange(start, end, dim int) (int, int) {
	if start < 0 {
		start += dim
	}
	if end < 0 {
		end += dim
	}
	return start, end
}

// Permute returns a view with axes reordered by perm (a permutation of
// 0..ndim-1); only strides and shape change, never the storage.
func (t *Tensor[T]) Permute(perm []int) (*Tensor[T], error) {
	n := t.NDim()
	if len(perm) != n {
		return nil, fmt.Errorf("tensor: permute needs %d axes, got %d", n, len(perm))
	}
	seen := make([]bool, n)
	shape := make([]int, n)
	strides := make([]int, n)
	for i, ax := range perm {
		if ax < 0 || ax >= n || seen[ax] {
			return nil, fmt.Errorf("tensor: invalid permutation %v", perm)
		}
		seen[ax] = true
		shape[i] = t.shape[ax]
		strides[i] = t.strides[ax]
	}
	return &Tensor[T]{shape: shape, strides: strides, storage: t.storage, offset: t.offset}, nil
}

// Transpose reverses all axes (the N-dimensional generalization of matrix
// transpose used when no explicit permutation is given).
func (t *Tensor[T]) Transpose() *Tensor[T] {
	n := t.NDim()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = n - 1 - i
	}
	v, _ := t.Permute(perm)
	return v
}

// Reshape returns a view with a new shape when t is contiguous; otherwise
// it returns an error (callers must call ToContiguous first). At most one
// dimension of newShape may be -1, inferred from the element count.
func (t *Tensor[T]) Reshape(newShape []int) (*Tensor[T], error) {
	if !t.IsContiguous() {
		return nil, fmt.Errorf("tensor: reshape requires a contiguous tensor")
	}
	resolved, err := resolveInferredDim(newShape, t.Len())
	if err != nil {
		return nil, err
	}
	return &Tensor[T]{
		shape:   resolved,
		strides: defaultStrides(resolved),
		storage: t.storage,
		offset:  t.offset,
	}, nil
}

func resolveInferredDim(shape []int, total int) ([]int, error) {
	out := append([]int(nil), shape...)
	inferAxis := -1
	known := 1
	for i, d := range out {
		if d == -1 {
			if inferAxis != -1 {
				return nil, fmt.Errorf("tensor: reshape allows at most one -1 dimension, got %v", shape)
			}
			inferAxis = i
			continue
		}
		if d < 0 {
			return nil, fmt.Errorf("tensor: reshape has negative dimension %d at axis %d", d, i)
		}
		known *= d
	}
	if inferAxis == -1 {
		if known != total {
			return nil, fmt.Errorf("tensor: reshape target %v has %d elements, source has %d", shape, known, total)
		}
		return out, nil
	}
	if known == 0 || total%known != 0 {
		return nil, fmt.Errorf("tensor: reshape cannot infer dimension for %v from %d elements", shape, total)
	}
	out[inferAxis] = total / known
	return out, nil
}

// BroadcastTo returns a view whose shape is target, with strides set to
// zero along every broadcast axis (repeated axis or inserted leading axis).
// It fails if t's shape is not broadcast-compatible with target.
func (t *Tensor[T]) BroadcastTo(target []int) (*Tensor[T], error) {
	if len(target) < t.NDim() {
		return nil, fmt.Errorf("tensor: cannot broadcast rank %d to rank %d", t.NDim(), len(target))
	}
	pad := len(target) - t.NDim()
	shape := make([]int, len(target))
	strides := make([]int, len(target))
	for i := range target {
		if i < pad {
			shape[i] = target[i]
			strides[i] = 0
			continue
		}
		srcDim := t.shape[i-pad]
		srcStride := t.strides[i-pad]
		switch {
		case srcDim == target[i]:
			shape[i] = target[i]
			strides[i] = srcStride
		case srcDim == 1:
			shape[i] = target[i]
			strides[i] = 0
		default:
			return nil, fmt.Errorf("tensor: shape %v is not broadcastable to %v", t.shape, target)
		}
	}
	return &Tensor[T]{shape: shape, strides: strides, storage: t.storage, offset: t.offset}, nil
}
