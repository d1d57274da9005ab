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

import (
	"math"

	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/tensor"
)

// Softmax computes the numerically stable softmax of t along axis,
// subtracting the per-axis max before exponentiating.
func Softmax(t tensor.Any, axis int, pool *tensor.Pool) (tensor.Any, error) {
	tf, err := t.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "softmax requires float32 input", err)
	}
	shape := tf.Shape()
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return tensor.Any{}, errs.New(errs.InvalidValue, "softmax: axis out of range")
	}
	out := tensor.AllocTensor[float32](pool, shape)

	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[axis]

	idx := make([]int, len(shape))
	for o := 0; o < outer; o++ {
		unravel(o, shape[:axis], idx[:axis])
		for in := 0; in < inner; in++ {
			unravel(in, shape[axis+1:], idx[axis+1:])

			max := float32(math.Inf(-1))
			for k := 0; k < n; k++ {
				idx[axis] = k
				if v := tf.At(idx); v > max {
					max = v
				}
			}
			sum := float32(0)
			exps := make([]float32, n)
			for k := 0; k < n; k++ {
				idx[axis] = k
				e := float32(math.Exp(float64(tf.At(idx) - max)))
				exps[k] = e
				sum += e
			}
			for k := 0; k < n; k++ {
				idx[axis] = k
				out.SetAt(idx, exps[k]/sum)
			}
		}
	}
	return tensor.FromFloat32(out), nil
}

// unravel writes the multi-index of flat index i within shape into dst.
func unravel(i int, shape []int, dst []int) {
	for a := len(shape) - 1; a >= 0; a-- {
		dst[a] = i % shape[a]
		i /= shape[a]
	}
}

// ArgMax returns the index of the maximum element along axis, ties broken
// toward the lowest index.
func ArgMax(t tensor.Any, axis int, keepDims bool) (tensor.Any, error) {
	shape := t.Shape()
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return tensor.Any{}, errs.New(errs.InvalidValue, "argmax: axis out of range")
	}

	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[axis]

	outShape := make([]int, 0, len(shape))
	for i, d := range shape {
		if i == axis {
			if keepDims {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	out := tensor.New[int32](outShape)
	outData, _ := out.Data()

	idx := make([]int, len(shape))
	pos := 0
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		for o := 0; o < outer; o++ {
			unravel(o, shape[:axis], idx[:axis])
			for in := 0; in < inner; in++ {
				unravel(in, shape[axis+1:], idx[axis+1:])
				best, bestIdx := float32(math.Inf(-1)), 0
				for k := 0; k < n; k++ {
					idx[axis] = k
					if v := tf.At(idx); v > best {
						best = v
						bestIdx = k
					}
				}
				outData[pos] = int32(bestIdx)
				pos++
			}
		}
	default:
		ti, _ := t.AsInt32()
		for o := 0; o < outer; o++ {
			unravel(o, shape[:axis], idx[:axis])
			for in := 0; in < inner; in++ {
				unravel(in, shape[axis+1:], idx[axis+1:])
				best, bestIdx := int32(math.MinInt32), 0
				for k := 0; k < n; k++ {
					idx[axis] = k
					if v := ti.At(idx); v > best {
						best = v
						bestIdx = k
					}
				}
				outData[pos] = int32(bestIdx)
				pos++
			}
		}
	}
	return tensor.FromInt32(out), nil
}

// ReduceMean averages t over axes, optionally keeping them as size-1 dims.
// An empty axis list reduces over every axis.
func ReduceMean(t tensor.Any, axes []int, keepDims bool, pool *tensor.Pool) (tensor.Any, error) {
	tf, err := t.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "reduce_mean requires float32 input", err)
	}
	shape := tf.Shape()
	reduce := make(map[int]bool, len(axes))
	if len(axes) == 0 {
		for i := range shape {
			reduce[i] = true
		}
	}
	for _, a := range axes {
		if a < 0 {
			a += len(shape)
		}
		if a < 0 || a >= len(shape) {
			return tensor.Any{}, errs.New(errs.InvalidValue, "reduce_mean: axis out of range")
		}
		reduce[a] = true
	}

	outShape := make([]int, 0, len(shape))
	for i, d := range shape {
		if reduce[i] {
			if keepDims {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	count := 1
	for i, d := range shape {
		if reduce[i] {
			count *= d
		}
	}
	out := tensor.AllocTensor[float32](pool, outShape)
	outData, _ := out.Data()
	for i := range outData {
		outData[i] = 0
	}

	outIdx := make([]int, len(outShape))
	tf.ForEach(func(idx []int, v float32) {
		p := 0
		for a, ix := range idx {
			if !reduce[a] {
				outIdx[p] = ix
				p++
			} else if keepDims {
				outIdx[p] = 0
				p++
			}
		}
		flat := 0
		stride := 1
		for a := len(outShape) - 1; a >= 0; a-- {
			flat += outIdx[a] * stride
			stride *= outShape[a]
		}
		outData[flat] += v
	})
	for i := range outData {
		outData[i] /= float32(count)
	}
	return tensor.FromFloat32(out), nil
}
