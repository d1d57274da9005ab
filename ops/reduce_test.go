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
	"testing"
)

func TestSoftmaxSumsToOneAndPreservesOrder(t *testing.T) {
	x := f32([]int{3}, []float32{1, 2, 3})
	out, err := Softmax(x, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	data := floatData(t, out)
	sum := float32(0)
	for _, v := range data {
		sum += v
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Fatalf("softmax sums to %v, want 1", sum)
	}
	if !(data[0] < data[1] && data[1] < data[2]) {
		t.Fatalf("softmax should preserve relative order, got %v", data)
	}
}

func TestSoftmaxAlongAxisOfMatrix(t *testing.T) {
	x := f32([]int{2, 2}, []float32{1, 2, 1, 2})
	out, err := Softmax(x, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	data := floatData(t, out)
	for _, row := range [][2]float32{{data[0], data[1]}, {data[2], data[3]}} {
		if math.Abs(float64(row[0]+row[1]-1)) > 1e-5 {
			t.Fatalf("row does not sum to 1: %v", row)
		}
	}
}

func TestArgMaxTieBreaksToLowestIndex(t *testing.T) {
	x := f32([]int{4}, []float32{1, 3, 3, 2})
	out, err := ArgMax(x, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	got := intData(t, out)
	if got[0] != 1 {
		t.Fatalf("got %v want index 1", got)
	}
}

func TestArgMaxKeepDims(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 5, 2, 9, 0, 3})
	out, err := ArgMax(x, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if shape := out.Shape(); len(shape) != 2 || shape[1] != 1 {
		t.Fatalf("unexpected shape %v", shape)
	}
	got := intData(t, out)
	if got[0] != 1 || got[1] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestReduceMeanOverAxis(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	out, err := ReduceMean(x, []int{1}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{2, 5})
}

func TestReduceMeanKeepDims(t *testing.T) {
	x := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	out, err := ReduceMean(x, []int{1}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); len(got) != 2 || got[1] != 1 {
		t.Fatalf("unexpected shape %v", got)
	}
}
