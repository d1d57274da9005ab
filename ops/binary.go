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

// Package ops implements the operator kernels the graph evaluator (package
// engine) dispatches on: elementwise binary/unary, reduction and
// shape-manipulation ops, convolution/pooling, and resize. Every kernel
// works on tensor.Any (a type-erased tensor.Tensor[float32|int32]) so the
// evaluator's opcode switch doesn't need a parallel dtype-specific call
// graph.
package ops

import (
	"math"

	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/simd"
	"github.com/ajroetker/go-infer/tensor"
)

// BinaryOp enumerates the elementwise binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Pow
	Mod
	And
	Or
	Xor
	Equal
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
)

// IsCommutative reports whether operand order may be swapped, which the
// evaluator uses to enable in-place execution when only the second operand's
// storage may be reused.
func IsCommutative(op BinaryOp) bool {
	switch op {
	case Add, Mul, And, Or, Xor, Equal:
		return true
	default:
		return false
	}
}

func isComparison(op BinaryOp) bool {
	switch op {
	case Equal, Less, LessOrEqual, Greater, GreaterOrEqual:
		return true
	default:
		return false
	}
}

// BinaryCanInPlace reports whether op ever supports in-place execution
// (comparisons always allocate a fresh int32 result).
func BinaryCanInPlace(op BinaryOp) bool {
	return !isComparison(op)
}

// Binary evaluates a `op` b (the three-input Where is handled in Where,
// not here) with broadcasting. modFloor selects Mod's
// flooring mode (true) vs truncating mode (false, default ONNX semantics).
// inPlace requests writing the result into a's storage; it is honored only
// when the RHS broadcasts to the LHS shape (the LHS shape is unchanged).
// Callers wanting the commutative-swap variant must swap the operands
// themselves, since only they know whether b's storage is theirs to reuse.
func Binary(op BinaryOp, a, b tensor.Any, pool *tensor.Pool, inPlace, modFloor bool) (tensor.Any, error) {
	if isComparison(op) {
		return binaryCompareAny(op, a, b, pool)
	}

	if a.DType() != b.DType() {
		return tensor.Any{}, errs.New(errs.IncorrectInputType, "binary op operands must share a dtype")
	}

	switch a.DType() {
	case tensor.Float32:
		af, _ := a.AsFloat32()
		bf, _ := b.AsFloat32()
		if out, ok := lanewiseBinary(op, af, bf, pool, inPlace); ok {
			return tensor.FromFloat32(out), nil
		}
		f, err := arithFuncFloat32(op, modFloor)
		if err != nil {
			return tensor.Any{}, err
		}
		if op == Div && bf.Len() == 1 {
			// Scalar divisor: one divide, then multiply through.
			recip := 1 / bf.At(make([]int, bf.NDim()))
			f = func(x, _ float32) float32 { return x * recip }
		}
		out, err := broadcastApply2(af, bf, pool, f, inPlace && BinaryCanInPlace(op))
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ai, _ := a.AsInt32()
		bi, _ := b.AsInt32()
		if out, ok := lanewiseBinary(op, ai, bi, pool, inPlace); ok {
			return tensor.FromInt32(out), nil
		}
		f, err := arithFuncInt32(op, modFloor)
		if err != nil {
			return tensor.Any{}, err
		}
		out, err := broadcastApply2(ai, bi, pool, f, inPlace && BinaryCanInPlace(op))
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

// lanewiseBinary handles Add/Sub/Mul over two dense, equal-shape operands
// with the same simd.Vec chunk loop the GEMM micro-kernel uses, leaving the
// broadcast machinery below for every other case.
func lanewiseBinary[T tensor.Elem](op BinaryOp, a, b *tensor.Tensor[T], pool *tensor.Pool, inPlace bool) (*tensor.Tensor[T], bool) {
	if op != Add && op != Sub && op != Mul {
		return nil, false
	}
	if !shapeEqual(a.Shape(), b.Shape()) {
		return nil, false
	}
	aData, aOK := a.Data()
	bData, bOK := b.Data()
	if !aOK || !bOK {
		return nil, false
	}

	var out *tensor.Tensor[T]
	if inPlace {
		out = a
	} else {
		out = tensor.AllocTensor[T](pool, a.Shape())
	}
	outData, _ := out.Data()

	lanes := simd.MaxLanes[T]()
	i := 0
	for ; i+lanes <= len(outData); i += lanes {
		va, vb := simd.Load(aData[i:]), simd.Load(bData[i:])
		var v simd.Vec[T]
		switch op {
		case Add:
			v = simd.Add(va, vb)
		case Sub:
			v = simd.Sub(va, vb)
		default:
			v = simd.Mul(va, vb)
		}
		simd.Store(v, outData[i:])
	}
	for ; i < len(outData); i++ {
		switch op {
		case Add:
			outData[i] = aData[i] + bData[i]
		case Sub:
			outData[i] = aData[i] - bData[i]
		default:
			outData[i] = aData[i] * bData[i]
		}
	}
	return out, true
}

func binaryCompareAny(op BinaryOp, a, b tensor.Any, pool *tensor.Pool) (tensor.Any, error) {
	if a.DType() != b.DType() {
		return tensor.Any{}, errs.New(errs.IncorrectInputType, "comparison operands must share a dtype")
	}
	switch a.DType() {
	case tensor.Float32:
		af, _ := a.AsFloat32()
		bf, _ := b.AsFloat32()
		out, err := compareApply2(op, af, bf, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	default:
		ai, _ := a.AsInt32()
		bi, _ := b.AsInt32()
		out, err := compareApply2(op, ai, bi, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func arithFuncFloat32(op BinaryOp, modFloor bool) (func(float32, float32) float32, error) {
	switch op {
	case Add:
		return func(a, b float32) float32 { return a + b }, nil
	case Sub:
		return func(a, b float32) float32 { return a - b }, nil
	case Mul:
		return func(a, b float32) float32 { return a * b }, nil
	case Div:
		return func(a, b float32) float32 { return a / b }, nil
	case Pow:
		return func(a, b float32) float32 {
			switch b {
			case 2:
				return a * a
			case 3:
				return a * a * a
			default:
				return float32(math.Pow(float64(a), float64(b)))
			}
		}, nil
	case Mod:
		return func(a, b float32) float32 {
			m := float32(math.Mod(float64(a), float64(b)))
			if modFloor && m != 0 && (m < 0) != (b < 0) {
				m += b
			}
			return m
		}, nil
	default:
		return nil, errs.New(errs.IncorrectInputType, "logic op requires int32 operands")
	}
}

func arithFuncInt32(op BinaryOp, modFloor bool) (func(int32, int32) int32, error) {
	switch op {
	case Add:
		return func(a, b int32) int32 { return a + b }, nil
	case Sub:
		return func(a, b int32) int32 { return a - b }, nil
	case Mul:
		return func(a, b int32) int32 { return a * b }, nil
	case Div:
		return func(a, b int32) int32 {
			if b == 0 {
				panic("ops: integer division by zero")
			}
			return a / b // Go integer division already truncates toward zero.
		}, nil
	case Pow:
		return func(a, b int32) int32 {
			switch b {
			case 2:
				return a * a
			case 3:
				return a * a * a
			}
			result := int32(1)
			for i := int32(0); i < b; i++ {
				result *= a
			}
			return result
		}, nil
	case Mod:
		return func(a, b int32) int32 {
			if b == 0 {
				panic("ops: integer modulo by zero")
			}
			m := a % b
			if modFloor && m != 0 && (m < 0) != (b < 0) {
				m += b
			}
			return m
		}, nil
	case And:
		return func(a, b int32) int32 { return a & b }, nil
	case Or:
		return func(a, b int32) int32 { return a | b }, nil
	case Xor:
		return func(a, b int32) int32 { return a ^ b }, nil
	default:
		return nil, errs.New(errs.InvalidValue, "unsupported binary op")
	}
}

func compare[T tensor.Elem](op BinaryOp, a, b T) bool {
	switch op {
	case Equal:
		return a == b
	case Less:
		return a < b
	case LessOrEqual:
		return a <= b
	case Greater:
		return a > b
	case GreaterOrEqual:
		return a >= b
	default:
		return false
	}
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// broadcastApply2 computes f(a,b) element-wise with standard right-aligned
// broadcast semantics, preferring the (cycles,repeats) fast path when one
// operand already has the output shape and the other qualifies, falling
// back to the general strided broadcast iterator otherwise.
func broadcastApply2[T tensor.Elem](a, b *tensor.Tensor[T], pool *tensor.Pool, f func(T, T) T, inPlace bool) (*tensor.Tensor[T], error) {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "binary op", err)
	}

	if inPlace && !shapeEqual(a.Shape(), outShape) {
		inPlace = false
	}
	if inPlace {
		if _, ok := a.Data(); !ok {
			inPlace = false
		}
	}

	var out *tensor.Tensor[T]
	if inPlace {
		out = a
	} else {
		out = tensor.AllocTensor[T](pool, outShape)
	}
	outData, _ := out.Data()

	aData, aOK := a.Data()
	bData, bOK := b.Data()

	if shapeEqual(a.Shape(), outShape) && aOK {
		if shapeEqual(b.Shape(), outShape) && bOK {
			for i := range outData {
				outData[i] = f(aData[i], bData[i])
			}
			return out, nil
		}
		if cycles, repeats, ok := tensor.FastBroadcast(b.Shape(), outShape); ok && bOK {
			idx := 0
			for c := 0; c < cycles; c++ {
				for _, bv := range bData {
					for r := 0; r < repeats; r++ {
						outData[idx] = f(aData[idx], bv)
						idx++
					}
				}
			}
			return out, nil
		}
	} else if shapeEqual(b.Shape(), outShape) && bOK {
		if cycles, repeats, ok := tensor.FastBroadcast(a.Shape(), outShape); ok && aOK {
			idx := 0
			for c := 0; c < cycles; c++ {
				for _, av := range aData {
					for r := 0; r < repeats; r++ {
						outData[idx] = f(av, bData[idx])
						idx++
					}
				}
			}
			return out, nil
		}
	}

	aBV, err := a.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "binary op", err)
	}
	bBV, err := b.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "binary op", err)
	}
	i := 0
	aBV.ForEach(func(idx []int, av T) {
		outData[i] = f(av, bBV.At(idx))
		i++
	})
	return out, nil
}

// compareMask evaluates op over two lane vectors, producing the per-lane
// mask the dense comparison path consumes.
func compareMask[T tensor.Elem](op BinaryOp, a, b simd.Vec[T]) simd.Mask[T] {
	switch op {
	case Equal:
		return simd.Equal(a, b)
	case Less:
		return simd.LessThan(a, b)
	case LessOrEqual:
		return simd.LessEqual(a, b)
	case Greater:
		return simd.GreaterThan(a, b)
	default:
		return simd.GreaterEqual(a, b)
	}
}

// compareApply2 is broadcastApply2 specialized for comparisons, whose
// output dtype (int32) differs from the input dtype T. Dense equal-shape
// operands compare a lane vector at a time through simd.Mask.
func compareApply2[T tensor.Elem](op BinaryOp, a, b *tensor.Tensor[T], pool *tensor.Pool) (*tensor.Tensor[int32], error) {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "comparison op", err)
	}
	out := tensor.AllocTensor[int32](pool, outShape)
	outData, _ := out.Data()

	aData, aOK := a.Data()
	bData, bOK := b.Data()

	if aOK && bOK && shapeEqual(a.Shape(), outShape) && shapeEqual(b.Shape(), outShape) {
		ones, zeros := simd.Set[int32](1), simd.Zero[int32]()
		lanes := simd.MaxLanes[T]()
		i := 0
		for ; i+lanes <= len(outData); i += lanes {
			m := compareMask(op, simd.Load(aData[i:]), simd.Load(bData[i:]))
			simd.Store(simd.IfThenElse(simd.RebindMask[int32](m), ones, zeros), outData[i:])
		}
		for ; i < len(outData); i++ {
			outData[i] = boolToI32(compare(op, aData[i], bData[i]))
		}
		return out, nil
	}

	if shapeEqual(a.Shape(), outShape) && aOK {
		if cycles, repeats, ok := tensor.FastBroadcast(b.Shape(), outShape); ok && bOK {
			idx := 0
			for c := 0; c < cycles; c++ {
				for _, bv := range bData {
					for r := 0; r < repeats; r++ {
						outData[idx] = boolToI32(compare(op, aData[idx], bv))
						idx++
					}
				}
			}
			return out, nil
		}
	}

	aBV, err := a.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "comparison op", err)
	}
	bBV, err := b.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "comparison op", err)
	}
	i := 0
	aBV.ForEach(func(idx []int, av T) {
		outData[i] = boolToI32(compare(op, av, bBV.At(idx)))
		i++
	})
	return out, nil
}

// Where evaluates cond != 0 ? a : b element-wise with three-way broadcasting.
func Where(cond tensor.Any, a, b tensor.Any, pool *tensor.Pool) (tensor.Any, error) {
	if a.DType() != b.DType() {
		return tensor.Any{}, errs.New(errs.IncorrectInputType, "where: a and b must share a dtype")
	}
	ci, err := cond.AsInt32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "where: condition must be int32", err)
	}
	switch a.DType() {
	case tensor.Float32:
		af, _ := a.AsFloat32()
		bf, _ := b.AsFloat32()
		out, err := whereApply(ci, af, bf, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(out), nil
	default:
		ai, _ := a.AsInt32()
		bi, _ := b.AsInt32()
		out, err := whereApply(ci, ai, bi, pool)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(out), nil
	}
}

func whereApply[T tensor.Elem](cond *tensor.Tensor[int32], a, b *tensor.Tensor[T], pool *tensor.Pool) (*tensor.Tensor[T], error) {
	outShape, err := tensor.BroadcastShapes(cond.Shape(), a.Shape())
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "where", err)
	}
	outShape, err = tensor.BroadcastShapes(outShape, b.Shape())
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "where", err)
	}
	out := tensor.AllocTensor[T](pool, outShape)
	outData, _ := out.Data()

	// Dense equal-shape operands select a lane vector at a time: the
	// condition chunk becomes a mask, and all-set/none-set chunks reduce to
	// straight copies.
	condData, cOK := cond.Data()
	aData, aOK := a.Data()
	bData, bOK := b.Data()
	if cOK && aOK && bOK &&
		shapeEqual(cond.Shape(), outShape) && shapeEqual(a.Shape(), outShape) && shapeEqual(b.Shape(), outShape) {
		zero := simd.Zero[int32]()
		lanes := simd.MaxLanes[T]()
		i := 0
		for ; i+lanes <= len(outData); i += lanes {
			m := simd.NotEqual(simd.Load(condData[i:]), zero)
			switch {
			case m.AllTrue():
				copy(outData[i:i+lanes], aData[i:i+lanes])
			case !m.AnyTrue():
				copy(outData[i:i+lanes], bData[i:i+lanes])
			default:
				sel := simd.IfThenElse(simd.RebindMask[T](m), simd.Load(aData[i:]), simd.Load(bData[i:]))
				simd.Store(sel, outData[i:])
			}
		}
		for ; i < len(outData); i++ {
			if condData[i] != 0 {
				outData[i] = aData[i]
			} else {
				outData[i] = bData[i]
			}
		}
		return out, nil
	}

	cBV, err := cond.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "where", err)
	}
	aBV, err := a.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "where", err)
	}
	bBV, err := b.BroadcastTo(outShape)
	if err != nil {
		return nil, errs.Wrap(errs.IncompatibleInputShapes, "where", err)
	}
	i := 0
	cBV.ForEach(func(idx []int, cv int32) {
		if cv != 0 {
			outData[i] = aBV.At(idx)
		} else {
			outData[i] = bBV.At(idx)
		}
		i++
	})
	return out, nil
}
