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
)

// writer is encode's counterpart to reader: a little-endian byte-buffer
// builder used by Save (mainly test tooling; loaders in the wild would
// supply the container some other producer built).
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u16(v uint16) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) i32(v int32)  { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) f32(v float32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) boolean(b bool) {
	if b {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *writer) bytesRaw(b []byte) { w.buf.Write(b) }
func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}
func (w *writer) intSlice(s []int) {
	w.u32(uint32(len(s)))
	for _, v := range s {
		w.i32(int32(v))
	}
}

// Save encodes m into the binary container Load decodes.
func Save(m *Model) []byte {
	w := &writer{}
	w.u32(magic)
	w.u16(m.SchemaVersion)
	w.u32(uint32(len(m.Graph.Nodes)))
	for _, n := range m.Graph.Nodes {
		encodeNode(w, n)
	}
	w.u32(uint32(len(m.Graph.Inputs)))
	for _, id := range m.Graph.Inputs {
		w.i32(int32(id))
	}
	w.u32(uint32(len(m.Graph.Outputs)))
	for _, id := range m.Graph.Outputs {
		w.i32(int32(id))
	}
	w.u32(uint32(len(m.Data)))
	w.bytesRaw(m.Data)
	return w.buf.Bytes()
}

func encodeNode(w *writer, n Node) {
	w.u8(uint8(n.Kind))
	w.str(n.Name)
	switch n.Kind {
	case KindValue:
		w.u8(uint8(n.Value.DType))
		w.intSlice(n.Value.Shape)
	case KindConstant:
		w.u8(uint8(n.Constant.DType))
		w.intSlice(n.Constant.Shape)
		w.u32(uint32(n.Constant.Offset))
		w.u32(uint32(n.Constant.Length))
	case KindOperator:
		w.i32(int32(n.Operator.Op))
		w.u32(uint32(len(n.Operator.Inputs)))
		for _, id := range n.Operator.Inputs {
			w.i32(int32(id))
		}
		encodeAttrs(w, n.Operator.Attrs)
	}
}

func encodeAttrs(w *writer, a Attrs) {
	w.i32(int32(a.Axis))
	w.intSlice(a.Axes)
	w.boolean(a.KeepDims)
	w.boolean(a.ModFloor)
	w.f32(a.ClipMin)
	w.f32(a.ClipMax)
	w.f32(a.LeakyAlpha)
	w.i32(int32(a.TriluK))
	w.boolean(a.TriluUpper)
	w.intSlice(a.TileReps)
	w.intSlice(a.NewShape)
	w.intSlice(a.SliceStarts)
	w.intSlice(a.SliceEnds)
	w.intSlice(a.SliceSteps)
	w.intSlice(a.SplitSizes)
	w.i32(int32(a.SplitIndex))
	w.intSlice(a.LowPad)
	w.intSlice(a.HighPad)
	w.intSlice(a.TargetShape)
	w.f32(a.RangeStart)
	w.f32(a.RangeLimit)
	w.f32(a.RangeDelta)
	w.u8(uint8(a.CastTo))
	w.i32(int32(a.StrideH))
	w.i32(int32(a.StrideW))
	w.i32(int32(a.PadTop))
	w.i32(int32(a.PadLeft))
	w.i32(int32(a.PadBottom))
	w.i32(int32(a.PadRight))
	w.boolean(a.PadSame)
	w.i32(int32(a.Groups))
	w.i32(int32(a.PoolKh))
	w.i32(int32(a.PoolKw))
	w.f32(a.ScaleH)
	w.f32(a.ScaleW)
	w.i32(int32(a.OutH))
	w.i32(int32(a.OutW))
	w.i32(int32(a.ResizeTransform))
	w.i32(int32(a.ResizeNearestMode))
	w.boolean(a.ResizeBilinear)
	w.f32(a.ConstantValueF32)
	w.i32(a.ConstantValueI32)
}
