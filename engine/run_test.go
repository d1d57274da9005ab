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
	"math"
	"testing"

	"github.com/ajroetker/go-infer/model"
	"github.com/ajroetker/go-infer/tensor"
)

func mustTensor(t *testing.T, shape []int, data []float32) tensor.Any {
	t.Helper()
	tn, err := tensor.FromData(shape, data)
	if err != nil {
		t.Fatal(err)
	}
	return tensor.FromFloat32(tn)
}

func TestRunScalarBroadcastAdd(t *testing.T) {
	m := &model.Model{
		Graph: model.Graph{
			Nodes: []model.Node{
				{Kind: model.KindValue, Name: "x", Value: model.ValueInfo{DType: model.Float32, Shape: []int{3}}},
				{Kind: model.KindValue, Name: "y", Value: model.ValueInfo{DType: model.Float32, Shape: []int{}}},
				{Kind: model.KindOperator, Name: "add", Operator: model.OperatorNode{Op: model.OpAdd, Inputs: []model.NodeID{0, 1}}},
			},
			Inputs:  []model.NodeID{0, 1},
			Outputs: []model.NodeID{2},
		},
	}
	inputs := map[model.NodeID]tensor.Any{
		0: mustTensor(t, []int{3}, []float32{1, 2, 3}),
		1: mustTensor(t, []int{}, []float32{10}),
	}
	out, err := Run(m, inputs, nil, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := out[2].AsFloat32()
	data, _ := f.Data()
	want := []float32{11, 12, 13}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}

func TestRunSoftmaxSumsToOne(t *testing.T) {
	m := &model.Model{
		Graph: model.Graph{
			Nodes: []model.Node{
				{Kind: model.KindValue, Name: "x", Value: model.ValueInfo{DType: model.Float32, Shape: []int{4}}},
				{Kind: model.KindOperator, Name: "softmax", Operator: model.OperatorNode{Op: model.OpSoftmax, Inputs: []model.NodeID{0}, Attrs: model.Attrs{Axis: 0}}},
			},
			Inputs:  []model.NodeID{0},
			Outputs: []model.NodeID{1},
		},
	}
	inputs := map[model.NodeID]tensor.Any{0: mustTensor(t, []int{4}, []float32{1, 2, 3, 4})}
	out, err := Run(m, inputs, nil, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := out[1].AsFloat32()
	data, _ := f.Data()
	sum := float32(0)
	for _, v := range data {
		sum += v
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Fatalf("softmax output sums to %v, want 1", sum)
	}
}

func TestRunIdentityMatMul(t *testing.T) {
	m := &model.Model{
		Graph: model.Graph{
			Nodes: []model.Node{
				{Kind: model.KindValue, Name: "x", Value: model.ValueInfo{DType: model.Float32, Shape: []int{2, 2}}},
				{Kind: model.KindValue, Name: "id", Value: model.ValueInfo{DType: model.Float32, Shape: []int{2, 2}}},
				{Kind: model.KindOperator, Name: "mm", Operator: model.OperatorNode{Op: model.OpMatMul, Inputs: []model.NodeID{0, 1}}},
			},
			Inputs:  []model.NodeID{0, 1},
			Outputs: []model.NodeID{2},
		},
	}
	inputs := map[model.NodeID]tensor.Any{
		0: mustTensor(t, []int{2, 2}, []float32{1, 2, 3, 4}),
		1: mustTensor(t, []int{2, 2}, []float32{1, 0, 0, 1}),
	}
	out, err := Run(m, inputs, nil, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := out[2].AsFloat32()
	data, _ := f.Data()
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}

func TestRunDoubleReluInPlaceChain(t *testing.T) {
	m := &model.Model{
		Graph: model.Graph{
			Nodes: []model.Node{
				{Kind: model.KindValue, Name: "x", Value: model.ValueInfo{DType: model.Float32, Shape: []int{4}}},
				{Kind: model.KindOperator, Name: "r1", Operator: model.OperatorNode{Op: model.OpRelu, Inputs: []model.NodeID{0}}},
				{Kind: model.KindOperator, Name: "r2", Operator: model.OperatorNode{Op: model.OpRelu, Inputs: []model.NodeID{1}}},
			},
			Inputs:  []model.NodeID{0},
			Outputs: []model.NodeID{2},
		},
	}
	inputs := map[model.NodeID]tensor.Any{0: mustTensor(t, []int{4}, []float32{-2, -1, 1, 2})}
	out, err := Run(m, inputs, nil, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := out[2].AsFloat32()
	data, _ := f.Data()
	want := []float32{0, 0, 1, 2}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}

func TestRunMissingInputError(t *testing.T) {
	m := &model.Model{
		Graph: model.Graph{
			Nodes: []model.Node{
				{Kind: model.KindValue, Name: "x", Value: model.ValueInfo{DType: model.Float32, Shape: []int{1}}},
				{Kind: model.KindOperator, Name: "r", Operator: model.OperatorNode{Op: model.OpRelu, Inputs: []model.NodeID{0}}},
			},
			Inputs:  []model.NodeID{0},
			Outputs: []model.NodeID{1},
		},
	}
	_, err := Run(m, map[model.NodeID]tensor.Any{}, nil, RunOptions{})
	if err == nil {
		t.Fatal("expected MissingInput error")
	}
}
