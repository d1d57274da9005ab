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

// UnaryOp enumerates the fixed-arity elementwise unary operators.
// Parametrized unary ops (Clip, LeakyRelu) are separate
// functions below since they carry extra scalar attributes.
type UnaryOp int

const (
	Relu UnaryOp = iota
	Sigmoid
	Tanh
	Erf
	Sin
	Cos
	Sqrt
	Log
	Abs
	Not
	Identity
	Round
)

// unaryFloatOnly reports whether op is only meaningful for float32 tensors.
func unaryFloatOnly(op UnaryOp) bool {
	switch op {
	case Not:
		return false
	default:
		return op != Abs && op != Identity
	}
}

// Unary evaluates op over t, writing into t itself when inPlace is true and
// the operator permits it (every UnaryOp here does; Unary never reshapes).
func Unary(op UnaryOp, t tensor.Any, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	switch t.DType() {
	case tensor.Float32:
		tf, _ := t.AsFloat32()
		f, err := unaryFuncFloat32(op)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromFloat32(applyUnary(tf, pool, f, inPlace)), nil
	default:
		if unaryFloatOnly(op) {
			return tensor.Any{}, errs.New(errs.IncorrectInputType, "unary op requires float32 input")
		}
		ti, _ := t.AsInt32()
		f, err := unaryFuncInt32(op)
		if err != nil {
			return tensor.Any{}, err
		}
		return tensor.FromInt32(applyUnary(ti, pool, f, inPlace)), nil
	}
}

func unaryFuncFloat32(op UnaryOp) (func(float32) float32, error) {
	switch op {
	case Relu:
		return func(x float32) float32 {
			if x < 0 {
				return 0
			}
			return x
		}, nil
	case Sigmoid:
		return func(x float32) float32 { return float32(1 / (1 + math.Exp(-float64(x)))) }, nil
	case Tanh:
		return func(x float32) float32 { return float32(math.Tanh(float64(x))) }, nil
	case Erf:
		return func(x float32) float32 { return float32(math.Erf(float64(x))) }, nil
	case Sin:
		return func(x float32) float32 { return float32(math.Sin(float64(x))) }, nil
	case Cos:
		return func(x float32) float32 { return float32(math.Cos(float64(x))) }, nil
	case Sqrt:
		return func(x float32) float32 { return float32(math.Sqrt(float64(x))) }, nil
	case Log:
		return func(x float32) float32 { return float32(math.Log(float64(x))) }, nil
	case Abs:
		return func(x float32) float32 { return float32(math.Abs(float64(x))) }, nil
	case Identity:
		return func(x float32) float32 { return x }, nil
	case Round:
		return func(x float32) float32 { return float32(math.RoundToEven(float64(x))) }, nil
	default:
		return nil, errs.New(errs.InvalidValue, "unsupported float32 unary op")
	}
}

func unaryFuncInt32(op UnaryOp) (func(int32) int32, error) {
	switch op {
	case Abs:
		return func(x int32) int32 {
			if x < 0 {
				return -x
			}
			return x
		}, nil
	case Not:
		return func(x int32) int32 {
			if x == 0 {
				return 1
			}
			return 0
		}, nil
	case Identity:
		return func(x int32) int32 { return x }, nil
	default:
		return nil, errs.New(errs.IncorrectInputType, "unsupported int32 unary op")
	}
}

func applyUnary[T tensor.Elem](t *tensor.Tensor[T], pool *tensor.Pool, f func(T) T, inPlace bool) *tensor.Tensor[T] {
	if inPlace {
		t.Apply(f)
		return t
	}
	if data, ok := t.Data(); ok {
		out := tensor.AllocTensor[T](pool, t.Shape())
		outData, _ := out.Data()
		for i, v := range data {
			outData[i] = f(v)
		}
		return out
	}
	return t.Map(f)
}

// Clip bounds every element of t to [lo, hi].
func Clip(t tensor.Any, lo, hi float32, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	tf, err := t.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "clip requires float32 input", err)
	}
	f := func(x float32) float32 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}
	return tensor.FromFloat32(applyUnary(tf, pool, f, inPlace)), nil
}

// LeakyRelu applies x if x >= 0 else alpha*x.
func LeakyRelu(t tensor.Any, alpha float32, pool *tensor.Pool, inPlace bool) (tensor.Any, error) {
	tf, err := t.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "leaky_relu requires float32 input", err)
	}
	f := func(x float32) float32 {
		if x >= 0 {
			return x
		}
		return alpha * x
	}
	return tensor.FromFloat32(applyUnary(tf, pool, f, inPlace)), nil
}
