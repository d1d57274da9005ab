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

func TestResizeNearestAsymmetricDoublesSize(t *testing.T) {
	x := f32([]int{1, 1, 2, 2}, []float32{1, 2, 3, 4})
	out, err := Resize(x, 4, 4, ResizeParams{ScaleH: 2, ScaleW: 2, Transform: Asymmetric, Nearest: Floor}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[2] != 4 || got[3] != 4 {
		t.Fatalf("unexpected shape %v", got)
	}
	assertFloats(t, out, []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	})
}

func TestResizeEmptyOutputShortCircuits(t *testing.T) {
	x := f32([]int{1, 1, 2, 2}, []float32{1, 2, 3, 4})
	out, err := Resize(x, 0, 0, ResizeParams{ScaleH: 1, ScaleW: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[2] != 0 || got[3] != 0 {
		t.Fatalf("expected empty spatial dims, got %v", got)
	}
}

func TestResizeRejectsNonNCHWRank(t *testing.T) {
	x := f32([]int{2, 2}, []float32{1, 2, 3, 4})
	if _, err := Resize(x, 4, 4, ResizeParams{ScaleH: 2, ScaleW: 2}, nil); err == nil {
		t.Fatal("expected error for non-4D input")
	}
}

func TestResizeBilinearUnitScaleKeepsInput(t *testing.T) {
	x := f32([]int{1, 1, 2, 2}, []float32{0, 10, 20, 30})
	out, err := Resize(x, 2, 2, ResizeParams{ScaleH: 1, ScaleW: 1, Transform: Asymmetric, Bilinear: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 10, 20, 30})
}
