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

package simd

import "testing"

func TestLoadStoreRoundTrip(t *testing.T) {
	n := MaxLanes[float32]()
	src := make([]float32, n)
	for i := range src {
		src[i] = float32(i + 1)
	}
	v := Load(src)
	if v.NumLanes() != n {
		t.Fatalf("NumLanes() = %d, want %d", v.NumLanes(), n)
	}
	dst := make([]float32, n)
	Store(v, dst)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("lane %d: got %v want %v", i, dst[i], src[i])
		}
	}
}

func TestArithmeticLanewise(t *testing.T) {
	a := Set[float32](3)
	b := Set[float32](2)

	for _, tc := range []struct {
		name string
		got  Vec[float32]
		want float32
	}{
		{"Add", Add(a, b), 5},
		{"Sub", Sub(a, b), 1},
		{"Mul", Mul(a, b), 6},
		{"MulAdd", MulAdd(a, b, Set[float32](1)), 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for i, v := range tc.got.Data() {
				if v != tc.want {
					t.Fatalf("lane %d: got %v want %v", i, v, tc.want)
				}
			}
		})
	}
}

func TestZeroIsAdditiveIdentity(t *testing.T) {
	a := Set[int32](42)
	sum := Add(a, Zero[int32]())
	for i, v := range sum.Data() {
		if v != 42 {
			t.Fatalf("lane %d: got %v want 42", i, v)
		}
	}
}

func TestComparisonMasks(t *testing.T) {
	n := MaxLanes[float32]()
	asc := make([]float32, n)
	for i := range asc {
		asc[i] = float32(i)
	}
	a := Load(asc)
	mid := Set[float32](float32(n) / 2)

	for _, tc := range []struct {
		name string
		m    Mask[float32]
		want func(i int) bool
	}{
		{"Equal", Equal(a, a), func(int) bool { return true }},
		{"NotEqual", NotEqual(a, mid), func(i int) bool { return float32(i) != float32(n)/2 }},
		{"LessThan", LessThan(a, mid), func(i int) bool { return float32(i) < float32(n)/2 }},
		{"LessEqual", LessEqual(a, mid), func(i int) bool { return float32(i) <= float32(n)/2 }},
		{"GreaterThan", GreaterThan(a, mid), func(i int) bool { return float32(i) > float32(n)/2 }},
		{"GreaterEqual", GreaterEqual(a, mid), func(i int) bool { return float32(i) >= float32(n)/2 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			count := 0
			for i := 0; i < tc.m.NumLanes(); i++ {
				if tc.m.GetBit(i) != tc.want(i) {
					t.Fatalf("lane %d: got %v want %v", i, tc.m.GetBit(i), tc.want(i))
				}
				if tc.want(i) {
					count++
				}
			}
			if tc.m.CountTrue() != count {
				t.Fatalf("CountTrue() = %d, want %d", tc.m.CountTrue(), count)
			}
		})
	}
}

func TestMaskPredicates(t *testing.T) {
	a := Set[float32](1)
	all := Equal(a, a)
	if !all.AllTrue() || !all.AnyTrue() || all.CountTrue() != all.NumLanes() {
		t.Fatal("fully set mask misreported")
	}
	none := NotEqual(a, a)
	if none.AllTrue() || none.AnyTrue() || none.CountTrue() != 0 {
		t.Fatal("empty mask misreported")
	}
}

func TestIfThenElseSelectsPerLane(t *testing.T) {
	n := MaxLanes[int32]()
	cond := make([]int32, n)
	for i := range cond {
		cond[i] = int32(i % 2)
	}
	m := NotEqual(Load(cond), Zero[int32]())
	sel := IfThenElse(RebindMask[float32](m), Set[float32](1), Set[float32](-1))
	for i, v := range sel.Data() {
		want := float32(-1)
		if i%2 == 1 {
			want = 1
		}
		if v != want {
			t.Fatalf("lane %d: got %v want %v", i, v, want)
		}
	}
}
