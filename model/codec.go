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

package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ajroetker/go-infer/errs"
)

const magic uint32 = 0x474f494e // "GOIN"
const supportedSchemaVersion uint16 = 1

// reader tracks decode errors so callers can chain reads and check once.
type reader struct {
	r   *bytes.Reader
	err error
}

func (d *reader) u8() uint8 {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = err
	}
	return b
}

func (d *reader) u16() uint16 {
	var v uint16
	d.read(&v)
	return v
}

func (d *reader) u32() uint32 {
	var v uint32
	d.read(&v)
	return v
}

func (d *reader) i32() int32 {
	var v int32
	d.read(&v)
	return v
}

func (d *reader) f32() float32 {
	var v float32
	d.read(&v)
	return v
}

func (d *reader) bool() bool { return d.u8() != 0 }

func (d *reader) read(v any) {
	if d.err != nil {
		return
	}
	d.err = binary.Read(d.r, binary.LittleEndian, v)
}

func (d *reader) bytesN(n int) []byte {
	if d.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = err
	}
	return buf
}

// count reads a u32 length prefix for items of elemSize bytes each,
// rejecting declared lengths a truncated or hostile blob cannot back.
func (d *reader) count(elemSize int) int {
	n := int(d.u32())
	if d.err == nil && n*elemSize > d.r.Len() {
		d.err = fmt.Errorf("declared length %d exceeds remaining %d bytes", n, d.r.Len())
		return 0
	}
	return n
}

func (d *reader) str() string {
	return string(d.bytesN(d.count(1)))
}

func (d *reader) intSlice() []int {
	n := d.count(4)
	if d.err != nil {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = int(d.i32())
	}
	return out
}

// Load decodes a serialized model. Malformed structure
// (bad magic, unsupported schema version, out-of-range node references,
// a data blob too short for a constant's declared shape, or a cyclic
// operator graph) is reported as an errs.InvalidModel error.
func Load(data []byte) (*Model, error) {
	d := &reader{r: bytes.NewReader(data)}

	if got := d.u32(); got != magic {
		return nil, errs.New(errs.InvalidModel, fmt.Sprintf("bad magic 0x%x", got))
	}
	schemaVersion := d.u16()
	if d.err == nil && schemaVersion != supportedSchemaVersion {
		return nil, errs.New(errs.InvalidModel, fmt.Sprintf("unsupported schema_version %d", schemaVersion))
	}

	numNodes := d.count(1)
	nodes := make([]Node, numNodes)
	for i := range nodes {
		n, err := decodeNode(d)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	if d.err != nil {
		return nil, errs.Wrap(errs.InvalidModel, "truncated node table", d.err)
	}

	numInputs := d.count(4)
	inputs := make([]NodeID, numInputs)
	for i := range inputs {
		inputs[i] = NodeID(d.i32())
	}
	numOutputs := d.count(4)
	outputs := make([]NodeID, numOutputs)
	for i := range outputs {
		outputs[i] = NodeID(d.i32())
	}
	blob := d.bytesN(d.count(1))
	if d.err != nil {
		return nil, errs.Wrap(errs.InvalidModel, "truncated model container", d.err)
	}

	m := &Model{
		SchemaVersion: schemaVersion,
		Graph:         Graph{Nodes: nodes, Inputs: inputs, Outputs: outputs},
		Data:          blob,
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeNode(d *reader) (Node, error) {
	kind := NodeKind(d.u8())
	name := d.str()
	n := Node{Kind: kind, Name: name}
	switch kind {
	case KindValue:
		n.Value = ValueInfo{DType: DType(d.u8()), Shape: d.intSlice()}
	case KindConstant:
		n.Constant = ConstantInfo{
			DType:  DType(d.u8()),
			Shape:  d.intSlice(),
			Offset: int(d.u32()),
			Length: int(d.u32()),
		}
	case KindOperator:
		op := OpType(d.i32())
		numInputs := d.count(4)
		inputs := make([]NodeID, numInputs)
		for i := range inputs {
			inputs[i] = NodeID(d.i32())
		}
		attrs := decodeAttrs(d)
		n.Operator = OperatorNode{Op: op, Inputs: inputs, Attrs: attrs}
	default:
		return Node{}, errs.New(errs.InvalidModel, fmt.Sprintf("unknown node kind %d", kind))
	}
	return n, nil
}

func decodeAttrs(d *reader) Attrs {
	var a Attrs
	a.Axis = int(d.i32())
	a.Axes = d.intSlice()
	a.KeepDims = d.bool()
	a.ModFloor = d.bool()
	a.ClipMin = d.f32()
	a.ClipMax = d.f32()
	a.LeakyAlpha = d.f32()
	a.TriluK = int(d.i32())
	a.TriluUpper = d.bool()
	a.TileReps = d.intSlice()
	a.NewShape = d.intSlice()
	a.SliceStarts = d.intSlice()
	a.SliceEnds = d.intSlice()
	a.SliceSteps = d.intSlice()
	a.SplitSizes = d.intSlice()
	a.SplitIndex = int(d.i32())
	a.LowPad = d.intSlice()
	a.HighPad = d.intSlice()
	a.TargetShape = d.intSlice()
	a.RangeStart = d.f32()
	a.RangeLimit = d.f32()
	a.RangeDelta = d.f32()
	a.CastTo = DType(d.u8())
	a.StrideH = int(d.i32())
	a.StrideW = int(d.i32())
	a.PadTop = int(d.i32())
	a.PadLeft = int(d.i32())
	a.PadBottom = int(d.i32())
	a.PadRight = int(d.i32())
	a.PadSame = d.bool()
	a.Groups = int(d.i32())
	a.PoolKh = int(d.i32())
	a.PoolKw = int(d.i32())
	a.ScaleH = d.f32()
	a.ScaleW = d.f32()
	a.OutH = int(d.i32())
	a.OutW = int(d.i32())
	a.ResizeTransform = int(d.i32())
	a.ResizeNearestMode = int(d.i32())
	a.ResizeBilinear = d.bool()
	a.ConstantValueF32 = d.f32()
	a.ConstantValueI32 = d.i32()
	return a
}

// validate rejects structurally unsound graphs at load time:
// out-of-range node references, constants whose declared shape doesn't fit
// the data blob, and cycles among operator nodes.
func validate(m *Model) error {
	n := len(m.Graph.Nodes)
	inRange := func(id NodeID) bool { return int(id) >= 0 && int(id) < n }

	for _, id := range m.Graph.Inputs {
		if !inRange(id) {
			return errs.New(errs.InvalidModel, fmt.Sprintf("input references out-of-range node %d", id))
		}
	}
	for _, id := range m.Graph.Outputs {
		if !inRange(id) {
			return errs.New(errs.InvalidModel, fmt.Sprintf("output references out-of-range node %d", id))
		}
	}

	for i, node := range m.Graph.Nodes {
		switch node.Kind {
		case KindConstant:
			elemSize := 4
			want := elemSize
			for _, d := range node.Constant.Shape {
				want *= d
			}
			if node.Constant.Offset < 0 || node.Constant.Length != want ||
				node.Constant.Offset+node.Constant.Length > len(m.Data) {
				return errs.New(errs.InvalidModel, fmt.Sprintf("constant node %d's shape doesn't fit the data blob", i))
			}
		case KindOperator:
			for _, in := range node.Operator.Inputs {
				if !inRange(in) {
					return errs.New(errs.InvalidModel, fmt.Sprintf("operator node %d references out-of-range input %d", i, in))
				}
				// Serialized order must be a valid topological order: every
				// input refers to a previously declared node.
				if int(in) >= i {
					return errs.New(errs.InvalidModel, fmt.Sprintf("operator node %d references undeclared input %d", i, in))
				}
			}
		}
	}

	if err := checkAcyclic(m); err != nil {
		return err
	}
	return nil
}

// checkAcyclic does a DFS over operator-node dependency edges, rejecting
// the graph if a back-edge closes a cycle.
func checkAcyclic(m *Model) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(m.Graph.Nodes))
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return errs.New(errs.InvalidModel, fmt.Sprintf("cycle detected at node %d", id))
		}
		color[id] = gray
		if m.Graph.Nodes[id].Kind == KindOperator {
			for _, in := range m.Graph.Nodes[id].Operator.Inputs {
				if err := visit(in); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for i := range m.Graph.Nodes {
		if err := visit(NodeID(i)); err != nil {
			return err
		}
	}
	return nil
}
