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

package infer

import (
	"github.com/ajroetker/go-infer/engine"
	"github.com/ajroetker/go-infer/model"
	"github.com/ajroetker/go-infer/tensor"
)

// Model is a loaded, ready-to-run computation graph.
type Model struct {
	m *model.Model
}

// Load decodes a serialized model. See model.Load for the container
// format and the structural checks applied (InvalidModel on failure).
func Load(data []byte) (*Model, error) {
	m, err := model.Load(data)
	if err != nil {
		return nil, err
	}
	return &Model{m: m}, nil
}

// NodeID identifies a node within a loaded Model's graph.
type NodeID = model.NodeID

// NodeInfo is a human-readable summary of one graph node.
type NodeInfo = model.NodeInfo

// FindNode returns the ID of the node with the given name, or ok=false if
// no node has it.
func (md *Model) FindNode(name string) (NodeID, bool) {
	return md.m.FindByName(name)
}

// NodeInfo returns a summary (name, kind, declared shape where one exists)
// of the node at id.
func (md *Model) NodeInfo(id NodeID) (NodeInfo, bool) {
	return md.m.Info(id)
}

// NodeInfos returns a summary of every node in the model, in ID order.
func (md *Model) NodeInfos() []NodeInfo { return md.m.Describe() }

// InputIDs returns the model's external input node IDs.
func (md *Model) InputIDs() []NodeID { return md.m.InputIDs() }

// OutputIDs returns the model's external output node IDs.
func (md *Model) OutputIDs() []NodeID { return md.m.OutputIDs() }

// RunOptions controls diagnostics for Run; see engine.RunOptions.
type RunOptions = engine.RunOptions

// Run evaluates the model's outputs (or the subset in requestOutputs, if
// non-empty) given the supplied input tensors, keyed by NodeID.
func (md *Model) Run(inputs map[NodeID]tensor.Any, requestOutputs []NodeID, opts RunOptions) (map[NodeID]tensor.Any, error) {
	outputs := requestOutputs
	if len(outputs) == 0 {
		outputs = md.m.OutputIDs()
	}
	return engine.Run(md.m, inputs, outputs, opts)
}

// Tensor is the module's public tensor handle: a type-erased tensor over
// float32 or int32 storage. See package tensor for the underlying
// strided-view implementation.
type Tensor = tensor.Any

// FromFloat32 builds a Tensor from a shape and flat row-major float32 data.
func FromFloat32(shape []int, data []float32) (Tensor, error) {
	t, err := tensor.FromData(shape, data)
	if err != nil {
		return Tensor{}, err
	}
	return tensor.FromFloat32(t), nil
}

// FromInt32 builds a Tensor from a shape and flat row-major int32 data.
func FromInt32(shape []int, data []int32) (Tensor, error) {
	t, err := tensor.FromData(shape, data)
	if err != nil {
		return Tensor{}, err
	}
	return tensor.FromInt32(t), nil
}

// Zeros builds a zero-filled float32 Tensor of the given shape.
func Zeros(shape []int) Tensor {
	return tensor.FromFloat32(tensor.New[float32](shape))
}

// FromScalarFloat32 builds a rank-0 float32 Tensor holding v.
func FromScalarFloat32(v float32) Tensor {
	return tensor.FromFloat32(tensor.FromScalar(v))
}
