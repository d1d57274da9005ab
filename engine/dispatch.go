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

package engine

import (
	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/model"
	"github.com/ajroetker/go-infer/ops"
	"github.com/ajroetker/go-infer/tensor"
)

var binaryOps = map[model.OpType]ops.BinaryOp{
	model.OpAdd: ops.Add, model.OpSub: ops.Sub, model.OpMul: ops.Mul, model.OpDiv: ops.Div,
	model.OpPow: ops.Pow, model.OpMod: ops.Mod, model.OpAnd: ops.And, model.OpOr: ops.Or,
	model.OpXor: ops.Xor, model.OpEqual: ops.Equal, model.OpLess: ops.Less,
	model.OpLessOrEqual: ops.LessOrEqual, model.OpGreater: ops.Greater,
	model.OpGreaterOrEqual: ops.GreaterOrEqual,
}

var unaryOps = map[model.OpType]ops.UnaryOp{
	model.OpRelu: ops.Relu, model.OpSigmoid: ops.Sigmoid, model.OpTanh: ops.Tanh,
	model.OpErf: ops.Erf, model.OpSin: ops.Sin, model.OpCos: ops.Cos, model.OpSqrt: ops.Sqrt,
	model.OpLog: ops.Log, model.OpAbs: ops.Abs, model.OpNot: ops.Not,
	model.OpIdentity: ops.Identity, model.OpRound: ops.Round,
}

// minArity is the number of required inputs per opcode, checked before
// dispatch so a malformed graph surfaces MissingInput instead of an index
// panic. Opcodes absent from the map need one input, except Range and
// ConstantOfShape, which take none.
var minArity = map[model.OpType]int{
	model.OpWhere: 3, model.OpMatMul: 2, model.OpConv: 2, model.OpConvTranspose: 2,
	model.OpGather: 2,
}

// dispatch evaluates a single operator node given its already-resolved
// input tensors. inPlace requests in-place execution of args[0] when the
// evaluator has determined no other needed node still depends on it.
func dispatch(node model.OperatorNode, args []tensor.Any, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	a := node.Attrs

	need := 1
	switch node.Op {
	case model.OpRange, model.OpConstantOfShape:
		need = 0
	default:
		if n, ok := minArity[node.Op]; ok {
			need = n
		}
	}
	if len(args) < need {
		return tensor.Any{}, errs.New(errs.MissingInput, node.Op.String()+": required input missing")
	}

	if bop, ok := binaryOps[node.Op]; ok {
		if len(args) != 2 {
			return tensor.Any{}, errs.New(errs.MissingInput, node.Op.String()+" requires two inputs")
		}
		return ops.Binary(bop, args[0], args[1], pool, inPlace, a.ModFloor)
	}
	if uop, ok := unaryOps[node.Op]; ok {
		if len(args) != 1 {
			return tensor.Any{}, errs.New(errs.MissingInput, node.Op.String()+" requires one input")
		}
		return ops.Unary(uop, args[0], pool, inPlace)
	}

	switch node.Op {
	case model.OpWhere:
		return ops.Where(args[0], args[1], args[2], pool)
	case model.OpClip:
		return ops.Clip(args[0], a.ClipMin, a.ClipMax, pool, inPlace)
	case model.OpLeakyRelu:
		return ops.LeakyRelu(args[0], a.LeakyAlpha, pool, inPlace)
	case model.OpSign:
		return ops.Sign(args[0], pool, inPlace)
	case model.OpReciprocal:
		return ops.Reciprocal(args[0], pool, inPlace)
	case model.OpTrilu:
		return ops.Trilu(args[0], a.TriluK, a.TriluUpper, pool)
	case model.OpTile:
		return ops.Tile(args[0], a.TileReps, pool)
	case model.OpSoftmax:
		return ops.Softmax(args[0], a.Axis, pool)
	case model.OpArgMax:
		return ops.ArgMax(args[0], a.Axis, a.KeepDims)
	case model.OpReduceMean:
		return ops.ReduceMean(args[0], a.Axes, a.KeepDims, pool)
	case model.OpConcat:
		return ops.Concat(args, a.Axis, pool)
	case model.OpSlice:
		if len(a.SliceEnds) != len(a.SliceStarts) {
			return tensor.Any{}, errs.New(errs.InvalidValue, "slice: starts and ends disagree in length")
		}
		ranges := make([]tensor.Range, len(a.SliceStarts))
		for i := range ranges {
			step := 1
			if i < len(a.SliceSteps) {
				step = a.SliceSteps[i]
			}
			ranges[i] = tensor.Range{Start: a.SliceStarts[i], End: a.SliceEnds[i], Step: step}
		}
		return ops.Slice(args[0], ranges)
	case model.OpReshape:
		return ops.Reshape(args[0], a.NewShape)
	case model.OpTranspose:
		return ops.Transpose(args[0], a.Axes)
	case model.OpGather:
		idx, err := args[1].AsInt32()
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "gather requires int32 indices", err)
		}
		return ops.Gather(args[0], idx, a.Axis, pool)
	case model.OpSplit:
		pieces, err := ops.Split(args[0], a.Axis, a.SplitSizes)
		if err != nil {
			return tensor.Any{}, err
		}
		if a.SplitIndex < 0 || a.SplitIndex >= len(pieces) {
			return tensor.Any{}, errs.New(errs.InvalidValue, "split: split_index out of range")
		}
		return pieces[a.SplitIndex], nil
	case model.OpSqueeze:
		return ops.Squeeze(args[0], a.Axes)
	case model.OpUnsqueeze:
		return ops.Unsqueeze(args[0], a.Axes)
	case model.OpPad:
		var fill tensor.Any
		if len(args) > 1 {
			fill = args[1]
		} else if args[0].DType() == tensor.Int32 {
			fill = tensor.FromInt32(tensor.FromScalar(a.ConstantValueI32))
		} else {
			fill = tensor.FromFloat32(tensor.FromScalar(a.ConstantValueF32))
		}
		return ops.Pad(args[0], a.LowPad, a.HighPad, fill, pool)
	case model.OpShape:
		return ops.Shape(args[0]), nil
	case model.OpConstantOfShape:
		var fill tensor.Any
		if a.CastTo == model.Int32 {
			fill = tensor.FromInt32(tensor.FromScalar(a.ConstantValueI32))
		} else {
			fill = tensor.FromFloat32(tensor.FromScalar(a.ConstantValueF32))
		}
		return ops.ConstantOfShape(a.TargetShape, fill)
	case model.OpRange:
		return ops.Range(a.RangeStart, a.RangeLimit, a.RangeDelta)
	case model.OpExpand:
		return ops.Expand(args[0], a.TargetShape)
	case model.OpCast:
		return ops.Cast(args[0], modelDTypeToTensor(a.CastTo))
	case model.OpMatMul:
		return ops.MatMul(args[0], args[1], pool)
	case model.OpConv:
		var bias *tensor.Tensor[float32]
		if len(args) > 2 {
			bias, _ = args[2].AsFloat32()
		}
		return ops.Conv(args[0], args[1], bias, ops.ConvParams{
			StrideH: a.StrideH, StrideW: a.StrideW,
			PadTop: a.PadTop, PadLeft: a.PadLeft, PadBottom: a.PadBottom, PadRight: a.PadRight,
			SamePad: a.PadSame,
			Groups:  a.Groups,
		}, pool)
	case model.OpConvTranspose:
		var bias *tensor.Tensor[float32]
		if len(args) > 2 {
			bias, _ = args[2].AsFloat32()
		}
		return ops.ConvTranspose(args[0], args[1], bias, ops.ConvParams{
			StrideH: a.StrideH, StrideW: a.StrideW,
			PadTop: a.PadTop, PadLeft: a.PadLeft, PadBottom: a.PadBottom, PadRight: a.PadRight,
			SamePad: a.PadSame,
			Groups:  a.Groups,
		}, pool)
	case model.OpMaxPool:
		return ops.MaxPool2d(args[0], ops.PoolParams{
			Kh: a.PoolKh, Kw: a.PoolKw, StrideH: a.StrideH, StrideW: a.StrideW,
			PadTop: a.PadTop, PadLeft: a.PadLeft, PadBottom: a.PadBottom, PadRight: a.PadRight,
		}, pool)
	case model.OpAveragePool:
		return ops.AveragePool2d(args[0], ops.PoolParams{
			Kh: a.PoolKh, Kw: a.PoolKw, StrideH: a.StrideH, StrideW: a.StrideW,
			PadTop: a.PadTop, PadLeft: a.PadLeft, PadBottom: a.PadBottom, PadRight: a.PadRight,
		}, pool)
	case model.OpGlobalAveragePool:
		return ops.GlobalAveragePool(args[0], pool)
	case model.OpResize:
		return ops.Resize(args[0], a.OutH, a.OutW, ops.ResizeParams{
			ScaleH: a.ScaleH, ScaleW: a.ScaleW,
			Transform: ops.CoordTransform(a.ResizeTransform),
			Nearest:   ops.NearestMode(a.ResizeNearestMode),
			Bilinear:  a.ResizeBilinear,
		}, pool)
	default:
		return tensor.Any{}, errs.New(errs.UnsupportedValue, "unsupported opcode "+node.Op.String())
	}
}
