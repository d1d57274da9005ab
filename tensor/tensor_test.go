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

package tensor

import (
	"reflect"
	"testing"
)

func TestToContiguousIsBitwiseCopy(t *testing.T) {
	tn, err := FromData([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	c := tn.ToContiguous()
	data, ok := c.Data()
	if !ok {
		t.Fatal("expected contiguous data")
	}
	if !reflect.DeepEqual(data, []float32{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("got %v", data)
	}
}

func TestTransposeTwiceIsIdentity(t *testing.T) {
	tn, _ := FromData([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	back := tn.Transpose().Transpose()
	if !reflect.DeepEqual(back.Shape(), tn.Shape()) {
		t.Fatalf("shapes differ: %v vs %v", back.Shape(), tn.Shape())
	}
	if !reflect.DeepEqual(back.ToContiguous().storage, tn.ToContiguous().storage) {
		t.Fatal("transpose(transpose(t)) != t")
	}
}

func TestReshapeRoundTrip(t *testing.T) {
	tn, _ := FromData([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	r1, err := tn.Reshape([]int{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := r1.Reshape([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r2.ToContiguous().storage, tn.ToContiguous().storage) {
		t.Fatal("reshape round trip changed data")
	}
}

func TestReshapeInferredDim(t *testing.T) {
	tn, _ := FromData([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	r, err := tn.Reshape([]int{-1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Shape(), []int{3, 2}) {
		t.Fatalf("got shape %v", r.Shape())
	}
}

func TestReshapeNonContiguousFails(t *testing.T) {
	tn, _ := FromData([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	permuted, err := tn.Permute([]int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := permuted.Reshape([]int{6}); err == nil {
		t.Fatal("expected non-contiguous reshape to fail")
	}
}

func TestSliceExtractsSubrange(t *testing.T) {
	tn, _ := FromData([]int{4}, []float32{1, 2, 3, 4})
	s, err := tn.Slice([]Range{{Start: 1, End: 3, Step: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.ToContiguous().storage, []float32{2, 3}) {
		t.Fatalf("got %v", s.ToContiguous().storage)
	}
}

func TestSliceNegativeIndices(t *testing.T) {
	tn, _ := FromData([]int{5}, []float32{1, 2, 3, 4, 5})
	s, err := tn.Slice([]Range{{Start: -2, End: -0 + 5, Step: 1}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{4, 5}
	if !reflect.DeepEqual(s.ToContiguous().storage, want) {
		t.Fatalf("got %v want %v", s.ToContiguous().storage, want)
	}
}

func TestBroadcastToZeroStrides(t *testing.T) {
	tn, _ := FromData([]int{1, 3}, []float32{1, 2, 3})
	b, err := tn.BroadcastTo([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if b.Stride(0) != 0 {
		t.Fatalf("expected zero stride on broadcast axis, got %d", b.Stride(0))
	}
	got := b.ToContiguous().storage
	want := []float32{1, 2, 3, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBroadcastShapesSymmetric(t *testing.T) {
	a := []int{3, 1, 5}
	b := []int{1, 4, 1}
	c1, err := BroadcastShapes(a, b)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := BroadcastShapes(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c1, c2) {
		t.Fatalf("broadcast_shapes not symmetric: %v vs %v", c1, c2)
	}
	if !reflect.DeepEqual(c1, []int{3, 4, 5}) {
		t.Fatalf("got %v", c1)
	}
}

func TestFastBroadcastScalar(t *testing.T) {
	cycles, repeats, ok := FastBroadcast([]int{1}, []int{2, 2})
	if !ok || cycles != 1 || repeats != 4 {
		t.Fatalf("got cycles=%d repeats=%d ok=%v", cycles, repeats, ok)
	}
}

func TestFastBroadcastTrailingVector(t *testing.T) {
	// from shape (4,) broadcast over to shape (3, 4): trailing run, cycles=3, repeats=1.
	cycles, repeats, ok := FastBroadcast([]int{4}, []int{3, 4})
	if !ok || cycles != 3 || repeats != 1 {
		t.Fatalf("got cycles=%d repeats=%d ok=%v", cycles, repeats, ok)
	}
}

func TestFastBroadcastLeadingAxis(t *testing.T) {
	// from shape (3,1) broadcast over to shape (3,4): leading kept axis,
	// trailing repeat of 4.
	cycles, repeats, ok := FastBroadcast([]int{3, 1}, []int{3, 4})
	if !ok || cycles != 1 || repeats != 4 {
		t.Fatalf("got cycles=%d repeats=%d ok=%v", cycles, repeats, ok)
	}
}

func TestFastBroadcastNonContiguousRunFails(t *testing.T) {
	// from (1,4,1) broadcast over to (3,4,5): kept axis (4) is sandwiched by
	// two genuinely-broadcast axes that don't both reduce to a single
	// contiguous run touching the edges in the (cycles, repeats) model is
	// actually fine (leading+trailing), so force a true non-contiguous case
	// with two separate non-unit source axes that aren't adjacent.
	_, _, ok := FastBroadcast([]int{3, 1, 5}, []int{3, 4, 5})
	if ok {
		t.Fatal("expected non-contiguous broadcast run to be rejected")
	}
}

func TestPoolRecyclesBuffers(t *testing.T) {
	p := NewPool()
	buf1 := p.AllocFloat32(16)
	p.ReleaseFloat32(buf1)
	buf2 := p.AllocFloat32(16)
	if &buf1[0] != &buf2[0] {
		t.Fatal("expected pool to reuse released buffer")
	}
}

func TestPoolCapsFreeList(t *testing.T) {
	p := NewPool()
	var bufs [][]float32
	for i := 0; i < maxBuffersPerClass+2; i++ {
		bufs = append(bufs, make([]float32, 8))
	}
	for _, b := range bufs {
		p.ReleaseFloat32(b)
	}
	if len(p.freeF32[8]) != maxBuffersPerClass {
		t.Fatalf("free list has %d entries, want %d", len(p.freeF32[8]), maxBuffersPerClass)
	}
}
