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

package ops

// Sign, Reciprocal, Trilu and Tile round out the elementwise opcode set:
// converted models use them for masking in attention layers, 1/x in
// normalization layers, and batch replication.

import (
	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/tensor"
)

// Sign returns -1, 0 or 1 per element, matching the input's sign.
func Sign(t tensor.Any, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		f := func(x float32) float32 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}
		return tensor.FromFloat32(applyUnary(tf, pool, f, inPlace)), nil
	default:
		ti, _ := t.AsInt32()
		f := func(x int32) int32 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}
		return tensor.FromInt32(applyUnary(ti, pool, f, inPlace)), nil
	}
}

// Reciprocal computes 1/x element-wise (float32 only).
func Reciprocal(t tensor.Any, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	tf, err := t.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "reciprocal requires float32 input", err)
	}
	f := func(x float32) float32 { return 1 / x }
	return tensor.FromFloat32(applyUnary(tf, pool, f, inPlace)), nil
}

// Trilu zeroes elements of the last two dimensions outside the triangular
// region selected by upper and diagonal offset k (k=0 is the main
// diagonal, positive k shifts it up-right). Rank must be >= 2.
func Trilu(t tensor.Any, k int, upper bool, pool *tensor.Pool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, err := t.AsFloat32()
		if err != nil {
			return tensor.Any{}, err
		}
		out, err := trilu(tf, k, upper, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ti, _ := t.AsInt32()
		out, err := trilu(ti, k, upper, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func trilu[T tensor.Elem](t *tensor.Tensor[T], k int, upper bool, pool *tensor.Pool) (*tensor.Tensor[T], error) {
	shape := t.Shape()
	if len(shape) < 2 {
		return nil, errs.New(errs.InvalidValue, "trilu requires rank >= 2")
	}
	out := tensor.AllocTensor[T](pool, shape)
	outData, _ := out.Data()
	var zero T
	i := 0
	t.ForEach(func(idx []int, v T) {
		r, c := idx[len(idx)-2], idx[len(idx)-1]
		var keep bool
		if upper {
			keep = c-r >= k
		} else {
			keep = c-r <= k
		}
		if keep {
			outData[i] = v
		} else {
			outData[i] = zero
		}
		i++
	})
	return out, nil
}

// Tile repeats t reps[axis] times along each axis (len(reps) must equal
// t's rank), the way numpy.tile does.
func Tile(t tensor.Any, reps []int, pool *tensor.Pool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		out, err := tile(tf, reps, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ti, _ := t.AsInt32()
		out, err := tile(ti, reps, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func tile[T tensor.Elem](t *tensor.Tensor[T], reps []int, pool *tensor.Pool) (*tensor.Tensor[T], error) {
	shape := t.Shape()
	if len(reps) != len(shape) {
		return nil, errs.New(errs.InvalidValue, "tile: reps rank must match input rank")
	}
	outShape := make([]int, len(shape))
	for i, d := range shape {
		outShape[i] = d * reps[i]
	}
	out := tensor.AllocTensor[T](pool, outShape)
	n := len(outShape)
	idx := make([]int, n)
	srcIdx := make([]int, n)
	outData, _ := out.Data()
	i := 0
	if n == 0 {
		outData[0] = t.At(nil)
		return out, nil
	}
	for {
		for a := 0; a < n; a++ {
			srcIdx[a] = idx[a] % shape[a]
		}
		outData[i] = t.At(srcIdx)
		i++
		axis := n - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < outShape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			break
		}
	}
	return out, nil
}
