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

import "testing"

func TestSignFloat(t *testing.T) {
	x := f32([]int{4}, []float32{-3, 0, 0.5, 7})
	out, err := Sign(x, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{-1, 0, 1, 1})
}

func TestReciprocal(t *testing.T) {
	x := f32([]int{2}, []float32{2, 4})
	out, err := Reciprocal(x, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0.5, 0.25})
}

func TestTriluUpperKeepsOnOrAboveDiagonal(t *testing.T) {
	x := f32([]int{3, 3}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	out, err := Trilu(x, 0, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{1, 2, 3, 0, 5, 6, 0, 0, 9})
}

func TestTriluLowerKeepsOnOrBelowDiagonal(t *testing.T) {
	x := f32([]int{3, 3}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	out, err := Trilu(x, 0, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{1, 0, 0, 4, 5, 0, 7, 8, 9})
}

func TestTriluRejectsRankOne(t *testing.T) {
	x := f32([]int{3}, []float32{1, 2, 3})
	if _, err := Trilu(x, 0, true, nil); err == nil {
		t.Fatal("expected error for rank < 2 input")
	}
}

func TestTileReplicatesAlongEachAxis(t *testing.T) {
	x := f32([]int{1, 2}, []float32{1, 2})
	out, err := Tile(x, []int{2, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 2 || got[1] != 4 {
		t.Fatalf("unexpected output shape %v", got)
	}
	assertFloats(t, out, []float32{1, 2, 1, 2, 1, 2, 1, 2})
}

func TestTileRejectsRankMismatch(t *testing.T) {
	x := f32([]int{2}, []float32{1, 2})
	if _, err := Tile(x, []int{1, 1}, nil); err == nil {
		t.Fatal("expected error for reps rank mismatch")
	}
}
