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

package gemm

import (
	"math/rand"
	"testing"
)

func naiveMatMul(a, b, c []float32, m, n, k int, alpha, beta float32) {
	out := make([]float32, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for p := 0; p < k; p++ {
				sum += a[i*k+p] * b[p*n+j]
			}
			out[i*n+j] = alpha*sum + beta*c[i*n+j]
		}
	}
	copy(c, out)
}

func TestMatMulIdentity(t *testing.T) {
	a := []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	b := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	c := make([]float32, 9)
	MatMul(a, b, c, 3, 3, 3, 1, 0)
	for i := range b {
		if c[i] != b[i] {
			t.Fatalf("identity matmul: c[%d]=%v want %v", i, c[i], b[i])
		}
	}
}

func TestMatMulAgainstNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, dims := range [][3]int{{1, 1, 1}, {3, 5, 7}, {37, 41, 19}, {129, 200, 257}} {
		m, n, k := dims[0], dims[1], dims[2]
		a := make([]float32, m*k)
		b := make([]float32, k*n)
		c := make([]float32, m*n)
		want := make([]float32, m*n)
		for i := range a {
			a[i] = rng.Float32()*2 - 1
		}
		for i := range b {
			b[i] = rng.Float32()*2 - 1
		}
		for i := range c {
			c[i] = rng.Float32()
			want[i] = c[i]
		}
		MatMul(a, b, c, m, n, k, 1, 0)
		naiveMatMul(a, b, want, m, n, k, 1, 0)
		for i := range c {
			diff := c[i] - want[i]
			if diff < 0 {
				diff = -diff
			}
			rel := diff / (1e-6 + absf32(want[i]))
			if rel > 1e-4 && diff > 1e-4 {
				t.Fatalf("dims %v: c[%d]=%v want %v", dims, i, c[i], want[i])
			}
		}
	}
}

func TestMatMulBeta(t *testing.T) {
	a := []float32{2}
	b := []float32{3}
	c := []float32{10}
	MatMul(a, b, c, 1, 1, 1, 1, 1)
	if c[0] != 16 {
		t.Fatalf("got %v want 16 (alpha*A*B + beta*C = 6 + 10)", c[0])
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestPackLHSZeroPads(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5, 6}
	mr := 4
	packed := make([]float32, mr*2)
	for i := range packed {
		packed[i] = -1 // sentinel: every cell must be overwritten
	}
	active := PackLHS(a, packed, 3, 2, 0, 0, 3, 2, mr, 1)
	if active != 3 {
		t.Fatalf("active rows = %d want 3", active)
	}
	for _, v := range packed {
		if v == -1 {
			t.Fatalf("packed buffer has an uninitialized cell: %v", packed)
		}
	}
	// Zero-padding rows (index 3 within each Mr-row group) must be exactly 0.
	if packed[3] != 0 || packed[7] != 0 {
		t.Fatalf("padding rows not zero: %v", packed)
	}
}
