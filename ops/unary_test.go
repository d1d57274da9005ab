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

func TestUnaryRelu(t *testing.T) {
	x := f32([]int{4}, []float32{-2, -0.5, 0, 3})
	out, err := Unary(Relu, x, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 0, 0, 3})
}

func TestUnaryInPlaceMutatesStorage(t *testing.T) {
	x := f32([]int{3}, []float32{-1, 2, -3})
	out, err := Unary(Relu, x, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 2, 0})

	xf, _ := x.AsFloat32()
	data, _ := xf.Data()
	if data[0] != 0 || data[1] != 2 || data[2] != 0 {
		t.Fatalf("expected in-place mutation of x, got %v", data)
	}
}

func TestUnaryAbsWorksOnInt32(t *testing.T) {
	x := i32([]int{3}, []int32{-2, 0, 5})
	out, err := Unary(Abs, x, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	got := intData(t, out)
	want := []int32{2, 0, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestUnaryFloatOnlyRejectsInt32(t *testing.T) {
	x := i32([]int{1}, []int32{1})
	if _, err := Unary(Sigmoid, x, nil, false); err == nil {
		t.Fatal("expected error for sigmoid on int32 input")
	}
}

func TestClipBounds(t *testing.T) {
	x := f32([]int{4}, []float32{-5, 0.5, 2, 10})
	out, err := Clip(x, 0, 2, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{0, 0.5, 2, 2})
}

func TestLeakyReluNegativeSlope(t *testing.T) {
	x := f32([]int{3}, []float32{-2, 0, 2})
	out, err := LeakyRelu(x, 0.1, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{-0.2, 0, 2})
}
