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

// Package model decodes the serialized graph format: a self-describing
// binary container (magic, schema version, then length-prefixed sections
// for the node table, the input/output id lists, and a raw data blob
// constant tensors slice into), hand-rolled over encoding/binary rather
// than a generated/reflective serializer.
package model

// NodeID identifies a node within a Graph; node IDs are dense integers
// starting at zero, indexable directly into Graph.Nodes.
type NodeID int32

// NodeKind distinguishes the three node shapes a Graph can hold.
type NodeKind int

const (
	// KindValue is a graph input: a placeholder with a declared dtype and
	// shape (possibly containing -1 for dimensions fixed only at Run time).
	KindValue NodeKind = iota
	// KindConstant is a node whose value is embedded in the model's data blob.
	KindConstant
	// KindOperator is a computed node: an OpType plus input NodeIDs and attrs.
	KindOperator
)

// DType mirrors tensor.DType without importing package tensor, so model
// stays a leaf package the way errs does.
type DType int

const (
	Float32 DType = iota
	Int32
)

// ValueInfo describes a graph input's declared dtype and shape.
type ValueInfo struct {
	DType DType
	Shape []int
}

// ConstantInfo locates a constant's data within the model's data blob.
type ConstantInfo struct {
	DType  DType
	Shape  []int
	Offset int // byte offset into Model.Data
	Length int // byte length within Model.Data
}

// OperatorNode is a computed graph node: its opcode, ordered input node
// IDs, and its flattened attribute bag.
type OperatorNode struct {
	Op     OpType
	Inputs []NodeID
	Attrs  Attrs
}

// Node is the tagged union of the three node shapes a Graph holds. Exactly
// one of Value/Constant/Operator is populated, selected by Kind.
type Node struct {
	Kind     NodeKind
	Name     string
	Value    ValueInfo
	Constant ConstantInfo
	Operator OperatorNode
}

// Graph is the decoded computation graph: every node, plus which node IDs
// are the model's external inputs and outputs.
type Graph struct {
	Nodes   []Node
	Inputs  []NodeID
	Outputs []NodeID
}

// Model is a fully decoded, ready-to-run graph plus the raw constant data
// blob its KindConstant nodes slice into.
type Model struct {
	SchemaVersion uint16
	Graph         Graph
	Data          []byte
}

// FindNode returns the node at id, or ok=false if id is out of range.
func (m *Model) FindNode(id NodeID) (Node, bool) {
	if int(id) < 0 || int(id) >= len(m.Graph.Nodes) {
		return Node{}, false
	}
	return m.Graph.Nodes[id], true
}

// FindByName returns the ID of the first node with the given name, or
// ok=false if no node has it.
func (m *Model) FindByName(name string) (NodeID, bool) {
	for i, n := range m.Graph.Nodes {
		if n.Name == name {
			return NodeID(i), true
		}
	}
	return 0, false
}

// NodeInfo is a human-readable summary of a node, for introspection/debugging.
// Shape is the declared shape for value and constant nodes (-1 marks a
// dimension fixed only at run time) and nil for operator nodes, whose shape
// depends on their inputs.
type NodeInfo struct {
	ID    NodeID
	Name  string
	Kind  NodeKind
	Shape []int
}

func (n Node) info(id NodeID) NodeInfo {
	info := NodeInfo{ID: id, Name: n.Name, Kind: n.Kind}
	switch n.Kind {
	case KindValue:
		info.Shape = n.Value.Shape
	case KindConstant:
		info.Shape = n.Constant.Shape
	}
	return info
}

// Describe returns a NodeInfo for every node in the graph, in ID order.
func (m *Model) Describe() []NodeInfo {
	out := make([]NodeInfo, len(m.Graph.Nodes))
	for i, n := range m.Graph.Nodes {
		out[i] = n.info(NodeID(i))
	}
	return out
}

// Info returns the NodeInfo for a single node, or ok=false if id is out of
// range.
func (m *Model) Info(id NodeID) (NodeInfo, bool) {
	n, ok := m.FindNode(id)
	if !ok {
		return NodeInfo{}, false
	}
	return n.info(id), true
}

// InputIDs returns the model's external input node IDs, in declaration order.
func (m *Model) InputIDs() []NodeID { return m.Graph.Inputs }

// OutputIDs returns the model's external output node IDs, in declaration order.
func (m *Model) OutputIDs() []NodeID { return m.Graph.Outputs }
