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

func TestMatMulIdentity(t *testing.T) {
	a := f32([]int{2, 2}, []float32{1, 2, 3, 4})
	id := f32([]int{2, 2}, []float32{1, 0, 0, 1})
	out, err := MatMul(a, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertFloats(t, out, []float32{1, 2, 3, 4})
}

func TestMatMulNonSquare(t *testing.T) {
	a := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := f32([]int{3, 2}, []float32{7, 8, 9, 10, 11, 12})
	out, err := MatMul(a, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Shape(); got[0] != 2 || got[1] != 2 {
		t.Fatalf("unexpected shape %v", got)
	}
	// [1*7+2*9+3*11, 1*8+2*10+3*12, 4*7+5*9+6*11, 4*8+5*10+6*12]
	assertFloats(t, out, []float32{58, 64, 139, 154})
}

func TestMatMulRejectsIncompatibleInnerDims(t *testing.T) {
	a := f32([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := f32([]int{2, 2}, []float32{1, 2, 3, 4})
	if _, err := MatMul(a, b, nil); err == nil {
		t.Fatal("expected inner dimension mismatch error")
	}
}

func TestMatMulRejectsBatchedRank(t *testing.T) {
	a := f32([]int{2, 2, 2}, make([]float32, 8))
	b := f32([]int{2, 2, 2}, make([]float32, 8))
	if _, err := MatMul(a, b, nil); err == nil {
		t.Fatal("expected rank > 2 to be unsupported")
	}
}
