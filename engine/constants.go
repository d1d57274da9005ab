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
	"encoding/binary"
	"math"

	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/model"
	"github.com/ajroetker/go-infer/tensor"
)

// materializeConstant decodes a KindConstant node's raw bytes (little
// endian) into a tensor.Any.
func materializeConstant(m *model.Model, c model.ConstantInfo) (tensor.Any, error) {
	raw := m.Data[c.Offset : c.Offset+c.Length]
	switch c.DType {
	case model.Float32:
		n := len(raw) / 4
		data := make([]float32, n)
		for i := range data {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			data[i] = math.Float32frombits(bits)
		}
		t, err := tensor.FromData(c.Shape, data)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidModel, "constant data doesn't match declared shape", err)
		}
		return tensor.FromFloat32(t), nil
	default:
		n := len(raw) / 4
		data := make([]int32, n)
		for i := range data {
			data[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		t, err := tensor.FromData(c.Shape, data)
		if err != nil {
			return tensor.Any{}, errs.Wrap(errs.InvalidModel, "constant data doesn't match declared shape", err)
		}
		return tensor.FromInt32(t), nil
	}
}

func modelDTypeToTensor(d model.DType) tensor.DType {
	if d == model.Float32 {
		return tensor.Float32
	}
	return tensor.Int32
}
