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
	"testing"

	"github.com/ajroetker/go-infer/tensor"
)

func TestReshapeFlattenAndBack(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	out, err := Reshape(x, []int{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{1, 2, 3, 4, 5, 6})
}

func TestReshapeInferredDim(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	out, err := Reshape(x, []int{-1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 3 || got[1] != 2 {
		t.Fatalf("unexpected shape %v", got)
	}
}

func TestTransposeDefaultReversesAxes(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	out, err := Transpose(x, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 3 || got[1] != 2 {
		t.Fatalf("unexpected shape %v", got)
	}
	assertFloats(t, out, []float32{1, 4, 2, 5, 3, 6})
}

func TestSqueezeRemovesSizeOneAxes(t *testing.T) {
	x := f32([]int{1, 3, 1}, []float32{1, 2, 3})
	out, err := Squeeze(x, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("unexpected shape %v", got)
	}
}

func TestSqueezeRejectsNonSizeOneAxis(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	if _, err := Squeeze(x, []int{0}); err == nil {
		t.Fatal("expected error squeezing a non-size-1 axis")
	}
}

func TestUnsqueezeInsertsAxis(t *testing.T) {
	x := f32([]int{3}, []float32{1, 2, 3})
	out, err := Unsqueeze(x, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected shape %v", got)
	}
}

func TestSliceExtractsRange(t *testing.T) {
	x := f32([]int{4}, []float32{10, 20, 30, 40})
	out, err := Slice(x, []tensor.Range{{Start: 1, End: 3, Step: 1}})
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{20, 30})
}

func TestConcatAlongAxis(t *testing.T) {
	a := f32([]int{2, 2}, []float32{1, 2, 3, 4})
	b := f32([]int{2, 2}, []float32{5, 6, 7, 8})
	out, err := Concat([]tensor.Any{a, b}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 2 || got[1] != 4 {
		t.Fatalf("unexpected shape %v", got)
	}
	assertFloats(t, out, []float32{1, 2, 5, 6, 3, 4, 7, 8})
}

func TestConcatRejectsShapeMismatch(t *testing.T) {
	a := f32([]int{2, 2}, []float32{1, 2, 3, 4})
	b := f32([]int{3, 2}, []float32{1, 2, 3, 4, 5, 6})
	if _, err := Concat([]tensor.Any{a, b}, 1, nil); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestGatherSelectsRowsByIndex(t *testing.T) {
	x := f32([]int{3, 2}, []float32{1, 2, 3, 4, 5, 6})
	idx, _ := tensor.FromData([]int{2}, []int32{2, 0})
	out, err := Gather(x, idx, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 2 || got[1] != 2 {
		t.Fatalf("unexpected shape %v", got)
	}
	assertFloats(t, out, []float32{5, 6, 1, 2})
}

func TestGatherRejectsOutOfRangeIndex(t *testing.T) {
	x := f32([]int{2}, []float32{1, 2})
	idx, _ := tensor.FromData([]int{1}, []int32{5})
	if _, err := Gather(x, idx, 0, nil); err == nil {
		t.Fatal("expected out-of-range index error")
	}
}

func TestSplitSumsToInputAndRejectsMismatch(t *testing.T) {
	x := f32([]int{5}, []float32{1, 2, 3, 4, 5})
	pieces, err := Split(x, 0, []int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, pieces[0], []float32{1, 2})
	assertFloats(t, pieces[1], []float32{3, 4, 5})

	if _, err := Split(x, 0, []int{2, 2}); err == nil {
		t.Fatal("expected error when split sizes don't sum to axis dimension")
	}
}

func TestExpandBroadcastsToTargetShape(t *testing.T) {
	x := f32([]int{1, 3}, []float32{1, 2, 3})
	out, err := Expand(x, []int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{1, 2, 3, 1, 2, 3})
}

func TestCastFloatToIntTruncates(t *testing.T) {
	x := f32([]int{3}, []float32{1.9, -1.9, 2.1})
	out, err := Cast(x, tensor.Int32)
	if err != nil {
		t.Fatal(err)
	}
	got := intData(t, out)
	want := []int32{1, -1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestShapeReturnsDims(t *testing.T) {
	x := f32([]int{2, 3, 4}, make([]float32, 24))
	out := Shape(x)
	got := intData(t, out)
	want := []int32{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestConstantOfShapeFillsValue(t *testing.T) {
	v := f32([]int{}, []float32{7})
	out, err := ConstantOfShape([]int{2, 2}, v)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{7, 7, 7, 7})
}

func TestRangeProducesHalfOpenSequence(t *testing.T) {
	out, err := Range(0, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 3, 6, 9})
}

func TestRangeRejectsZeroDelta(t *testing.T) {
	if _, err := Range(0, 10, 0); err == nil {
		t.Fatal("expected error for zero delta")
	}
}

func TestPadAddsConstantBorder(t *testing.T) {
	x := f32([]int{2}, []float32{1, 2})
	fill := f32([]int{}, []float32{0})
	out, err := Pad(x, []int{1}, []int{2}, fill, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 1, 2, 0, 0})
}
