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
	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/tensor"
)

// Shape-changing operators materialize a fresh contiguous tensor rather than
// returning the tensor package's zero-copy views: the evaluator's pool
// release relies on every tensor.Any it sees densely owning its storage
// (tensor.Release checks offset==0 and len(storage)==Len()), and honoring
// that invariant here avoids threading alias-tracking through the graph
// executor for a property the operator layer can enforce once, at the
// source. This is documented as a deliberate simplification in DESIGN.md.

// Reshape returns t reshaped to newShape (one dimension may be -1).
func Reshape(t tensor.Any, newShape []int) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		c := tf.ToContiguous()
		r, err := c.Reshape(newShape)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidValue, "reshape", err)
		}
		return tensor.FromFloat32(r), nil
	default:
		ti, _ := t.AsInt32()
		c := ti.ToContiguous()
		r, err := c.Reshape(newShape)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidValue, "reshape", err)
		}
		return tensor.FromInt32(r), nil
	}
}

// Transpose permutes t's axes per perm (identity reverse order if perm is nil).
func Transpose(t tensor.Any, perm []int) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		v, err := permuteOrReverse(tf, perm)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(v.ToContiguous()), nil
	default:
		ti, _ := t.AsInt32()
		v, err := permuteOrReverse(ti, perm)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(v.ToContiguous()), nil
	}
}

func permuteOrReverse[T tensor.Elem](t *tensor.Tensor[T], perm []int) (*tensor.Tensor[T], error) {
	if perm == nil {
		return t.Transpose(), nil
	}
	v, err := t.Permute(perm)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidValue, "transpose", err)
	}
	return v, nil
}

// Squeeze removes axes of size 1. If axes is nil, every size-1 axis is removed.
func Squeeze(t tensor.Any, axes []int) (tensor.Any, error) {
	shape := t.Shape()
	drop := make(map[int]bool)
	if axes == nil {
		for i, d := range shape {
			if d == 1 {
				drop[i] = true
			}
		}
	} else {
		for _, a := range axes {
			if a < 0 {
				a += len(shape)
			}
			if a < 0 || a >= len(shape) || shape[a] != 1 {
				return tensor.Any{}, errs.New(errs.InvalidValue, "squeeze: axis is not size 1")
			}
			drop[a] = true
		}
	}
	newShape := make([]int, 0, len(shape))
	for i, d := range shape {
		if !drop[i] {
			newShape = append(newShape, d)
		}
	}
	return Reshape(t, newShape)
}

// Unsqueeze inserts size-1 axes at the given positions (relative to the
// output rank).
func Unsqueeze(t tensor.Any, axes []int) (tensor.Any, error) {
	shape := t.Shape()
	outRank := len(shape) + len(axes)
	insert := make(map[int]bool, len(axes))
	for _, a := range axes {
		if a < 0 {
			a += outRank
		}
		insert[a] = true
	}
	newShape := make([]int, 0, outRank)
	srcIdx := 0
	for i := 0; i < outRank; i++ {
		if insert[i] {
			newShape = append(newShape, 1)
		} else {
			newShape = append(newShape, shape[srcIdx])
			srcIdx++
		}
	}
	return Reshape(t, newShape)
}

// Slice extracts t[ranges...], a contiguous copy of the selected region.
// Steps other than ±1 are legal in the upstream op set but not implemented.
func Slice(t tensor.Any, ranges []tensor.Range) (tensor.Any, error) {
	for _, r := range ranges {
		if r.Step != 1 && r.Step != -1 {
			return tensor.Any{}, errs.New(errs.UnsupportedValue, "slice: step must be 1 or -1")
		}
	}
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		v, err := tf.Slice(ranges)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidValue, "slice", err)
		}
		return tensor.FromFloat32(v.ToContiguous()), nil
	default:
		ti, _ := t.AsInt32()
		v, err := ti.Slice(ranges)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidValue, "slice", err)
		}
		return tensor.FromInt32(v.ToContiguous()), nil
	}
}

// Concat joins tensors along axis. All inputs must share dtype and every
// dimension except axis.
func Concat(ts []tensor.Any, axis int, pool *tensor.Pool) (tensor.Any, error) {
	if len(ts) == 0 {
		return tensor.Any{}, errs.New(errs.MissingInput, "concat requires at least one input")
	}
	dtype := ts[0].DType()
	for _, t := range ts[1:] {
		if t.DType() != dtype {
			return tensor.Any{}, errs.New(errs.IncorrectInputType, "concat operands must share a dtype")
		}
	}
	switch dtype {
	case tensor.Float32:
		fs := make([]*tensor.Tensor[float32], len(ts))
		for i, t := range ts {
			fs[i], _ = t.AsFloat32()
		}
		out, err := concat(fs, axis, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		is := make([]*tensor.Tensor[int32], len(ts))
		for i, t := range ts {
			is[i], _ = t.AsInt32()
		}
		out, err := concat(is, axis, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func concat[T tensor.Elem](ts []*tensor.Tensor[T], axis int, pool *tensor.Pool) (*tensor.Tensor[T], error) {
	rank := len(ts[0].Shape())
	if axis < 0 {
		axis += rank
	}
	outShape := append([]int(nil), ts[0].Shape()...)
	total := 0
	for _, t := range ts {
		s := t.Shape()
		if len(s) != rank {
			return nil, errs.New(errs.IncompatibleInputShapes, "concat: rank mismatch")
		}
		for i, d := range s {
			if i != axis && d != outShape[i] {
				return nil, errs.New(errs.IncompatibleInputShapes, "concat: shape mismatch outside axis")
			}
		}
		total += s[axis]
	}
	outShape[axis] = total
	out := tensor.AllocTensor[T](pool, outShape)

	offset := 0
	for _, t := range ts {
		n := t.Shape()[axis]
		dst := make([]tensor.Range, rank)
		for i, d := range outShape {
			if i == axis {
				dst[i] = tensor.Range{Start: offset, End: offset + n, Step: 1}
			} else {
				dst[i] = tensor.Range{Start: 0, End: d, Step: 1}
			}
		}
		view, err := out.Slice(dst)
		if err != nil {
			return nil, errs.Wrap(errs.IncompatibleInputShapes, "concat", err)
		}
		i := 0
		outData, _ := view.Data()
		if outData != nil {
			t.ForEach(func(_ []int, v T) { outData[i] = v; i++ })
		} else {
			idx := make([]int, rank)
			copyIdx(view, t, idx, 0)
		}
		offset += n
	}
	return out, nil
}

func copyIdx[T tensor.Elem](dst, src *tensor.Tensor[T], idx []int, axis int) {
	if axis == len(idx) {
		dst.SetAt(idx, src.At(idx))
		return
	}
	for i := 0; i < dst.Shape()[axis]; i++ {
		idx[axis] = i
		copyIdx(dst, src, idx, axis+1)
	}
}

// Gather indexes t along axis using the integer positions in indices,
// producing an output of rank input_rank + index_rank - 1: the indexed axis
// is replaced by the index tensor's shape.
func Gather(t tensor.Any, indices *tensor.Tensor[int32], axis int, pool *tensor.Pool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		out, err := gather(tf, indices, axis, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ti, _ := t.AsInt32()
		out, err := gather(ti, indices, axis, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func gather[T tensor.Elem](t *tensor.Tensor[T], indices *tensor.Tensor[int32], axis int, pool *tensor.Pool) (*tensor.Tensor[T], error) {
	shape := t.Shape()
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return nil, errs.New(errs.InvalidValue, "gather: axis out of range")
	}
	idxData, ok := indices.Data()
	if !ok {
		idxData = indices.ToContiguous().Storage()
	}
	chunks := make([]*tensor.Tensor[T], len(idxData))
	for i, ix := range idxData {
		n := shape[axis]
		if ix < 0 {
			ix += int32(n)
		}
		if ix < 0 || int(ix) >= n {
			return nil, errs.New(errs.InvalidValue, "gather: index out of range")
		}
		ranges := make([]tensor.Range, len(shape))
		for a, d := range shape {
			if a == axis {
				ranges[a] = tensor.Range{Start: int(ix), End: int(ix) + 1, Step: 1}
			} else {
				ranges[a] = tensor.Range{Start: 0, End: d, Step: 1}
			}
		}
		v, err := t.Slice(ranges)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidValue, "gather", err)
		}
		chunks[i] = v
	}
	var joined *tensor.Tensor[T]
	if len(chunks) == 1 {
		joined = chunks[0].ToContiguous()
	} else {
		var err error
		joined, err = concat(chunks, axis, pool)
		if err != nil {
			return nil, err
		}
	}
	// The indexed axis (now len(idxData) long) takes the index tensor's
	// shape, so a scalar index drops the axis and a matrix of indices
	// raises the rank.
	outShape := make([]int, 0, len(shape)-1+indices.NDim())
	outShape = append(outShape, shape[:axis]...)
	outShape = append(outShape, indices.Shape()...)
	outShape = append(outShape, shape[axis+1:]...)
	r, err := joined.Reshape(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidValue, "gather", err)
	}
	return r, nil
}

// Split divides t into len(sizes) pieces along axis, sizes[i] elements each
// (must sum to the axis dimension).
func Split(t tensor.Any, axis int, sizes []int) ([]tensor.Any, error) {
	shape := t.Shape()
	ax := axis
	if ax < 0 {
		ax += len(shape)
	}
	out := make([]tensor.Any, len(sizes))
	offset := 0
	for i, n := range sizes {
		ranges := make([]tensor.Range, len(shape))
		for a, d := range shape {
			if a == ax {
				ranges[a] = tensor.Range{Start: offset, End: offset + n, Step: 1}
			} else {
				ranges[a] = tensor.Range{Start: 0, End: d, Step: 1}
			}
		}
		piece, err := Slice(t, ranges)
		if err != nil {
			return nil, err
		}
		out[i] = piece
		offset += n
	}
	if offset != shape[ax] {
		return nil, errs.New(errs.InvalidValue, "split: sizes do not sum to axis dimension")
	}
	return out, nil
}

// Expand broadcasts t to targetShape, materializing the result.
func Expand(t tensor.Any, targetShape []int) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		v, err := tf.BroadcastTo(targetShape)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.IncompatibleInputShapes, "expand", err)
		}
		return tensor.FromFloat32(v.ToContiguous()), nil
	default:
		ti, _ := t.AsInt32()
		v, err := ti.BroadcastTo(targetShape)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.IncompatibleInputShapes, "expand", err)
		}
		return tensor.FromInt32(v.ToContiguous()), nil
	}
}

// Cast converts t to the requested dtype.
func Cast(t tensor.Any, to tensor.DType) (tensor.Any, error) {
	if t.DType() == to {
		return t, nil
	}
	switch to {
	case tensor.Float32:
		ti, _ := t.AsInt32()
		out := tensor.New[float32](ti.Shape())
		outData, _ := out.Data()
		i := 0
		ti.ForEach(func(_ []int, v int32) { outData[i] = float32(v); i++ })
		return tensor.FromFloat32(out), nil
	default:
		tf, _ := t.AsFloat32()
		out := tensor.New[int32](tf.Shape())
		outData, _ := out.Data()
		i := 0
		tf.ForEach(func(_ []int, v float32) { outData[i] = int32(v); i++ })
		return tensor.FromInt32(out), nil
	}
}

// Shape returns a rank-1 int32 tensor holding t's dimension sizes.
func Shape(t tensor.Any) tensor.Any {
	s := t.Shape()
	data := make([]int32, len(s))
	for i, d := range s {
		data[i] = int32(d)
	}
	out, _ := tensor.FromData([]int{len(s)}, data)
	return tensor.FromInt32(out)
}

// ConstantOfShape builds a tensor of the given shape filled with v.
func ConstantOfShape(shape []int, v tensor.Any) (tensor.Any, error) {
	switch v.DType() {
	case tensor.Float32:
		vf, _ := v.AsFloat32()
		fv := vf.At(nil)
		out := tensor.New[float32](shape)
		data, _ := out.Data()
		for i := range data {
			data[i] = fv
		}
		return tensor.FromFloat32(out), nil
	default:
		vi, _ := v.AsInt32()
		iv := vi.At(nil)
		out := tensor.New[int32](shape)
		data, _ := out.Data()
		for i := range data {
			data[i] = iv
		}
		return tensor.FromInt32(out), nil
	}
}

// Range produces the half-open arithmetic sequence [start, limit) stepping
// by delta (float32), matching ONNX Range semantics.
func Range(start, limit, delta float32) (tensor.Any, error) {
	if delta == 0 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "range: delta must be non-zero")
	}
	n := int(math32Ceil((limit - start) / delta))
	if n < 0 {
		n = 0
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = start + float32(i)*delta
	}
	out, _ := tensor.FromData([]int{n}, data)
	return tensor.FromFloat32(out), nil
}

func math32Ceil(x float32) float32 {
	i := float32(int(x))
	if x > i {
		return i + 1
	}
	return i
}

// Pad pads t with constant value v, lowPad[axis] elements before and
// highPad[axis] elements after each axis.
func Pad(t tensor.Any, lowPad, highPad []int, v tensor.Any, pool *tensor.Pool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		vf, _ := v.AsFloat32()
		out, err := pad(tf, lowPad, highPad, vf.At(nil), pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ti, _ := t.AsInt32()
		vi, _ := v.AsInt32()
		out, err := pad(ti, lowPad, highPad, vi.At(nil), pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func pad[T tensor.Elem](t *tensor.Tensor[T], lowPad, highPad []int, v T, pool *tensor.Pool) (*tensor.Tensor[T], error) {
	shape := t.Shape()
	if len(lowPad) != len(shape) || len(highPad) != len(shape) {
		return nil, errs.New(errs.InvalidValue, "pad: pad rank must match input rank")
	}
	outShape := make([]int, len(shape))
	for i, d := range shape {
		if lowPad[i] < 0 || highPad[i] < 0 {
			return nil, errs.New(errs.InvalidValue, "pad: negative pad amount")
		}
		outShape[i] = d + lowPad[i] + highPad[i]
	}
	out := tensor.AllocTensor[T](pool, outShape)
	data, _ := out.Data()
	for i := range data {
		data[i] = v
	}
	ranges := make([]tensor.Range, len(shape))
	for i, d := range shape {
		ranges[i] = tensor.Range{Start: lowPad[i], End: lowPad[i] + d, Step: 1}
	}
	dst, err := out.Slice(ranges)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidValue, "pad", err)
	}
	idx := make([]int, len(shape))
	copyIdx(dst, t, idx, 0)
	return out, nil
}
