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
	"github.com/ajroetker/go-infer/gemm"
	"github.com/ajroetker/go-infer/tensor"
)

// MatMul multiplies two rank-2 float32 tensors via the packed-block GEMM
// kernel in package gemm. Batched (rank > 2) matmul is not
// implemented: graphs that need it must reshape/loop at the model-authoring
// level.
func MatMul(a, b tensor.Any, pool *tensor.Pool) (tensor.Any, error) {
	af, err := a.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "matmul requires float32 input", err)
	}
	bf, err := b.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "matmul requires float32 input", err)
	}
	as, bs := af.Shape(), bf.Shape()
	if len(as) != 2 || len(bs) != 2 {
		return tensor.Any{}, errs.New(errs.UnsupportedValue, "matmul: only rank-2 operands are supported")
	}
	if as[1] != bs[0] {
		return tensor.Any{}, errs.New(errs.IncompatibleInputShapes, "matmul: inner dimensions disagree")
	}
	m, k, n := as[0], as[1], bs[1]

	aData, ok := af.Data()
	if !ok {
		af = af.ToContiguous()
		aData, _ = af.Data()
	}
	bData, ok := bf.Data()
	if !ok {
		bf = bf.ToContiguous()
		bData, _ = bf.Data()
	}

	out := tensor.AllocTensor[float32](pool, []int{m, n})
	outData, _ := out.Data()
	gemm.MatMul(aData, bData, outData, m, n, k, 1, 0)
	return tensor.FromFloat32(out), nil
}
