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

// Package gemm implements the packed-block (GotoBLAS/BLIS) single-precision
// matrix multiply that backs both Model.Run's MatMul-shaped operators and
// the im2col convolution path in package ops.
package gemm

import "github.com/ajroetker/go-infer/simd"

// CacheParams are the blocking sizes for the 5-loop GEBP algorithm: Mc/Kc/Nc
// bound the packed-panel sizes that fit the L2/L1/L3 cache, Mr/Nr are the
// micro-kernel's register tile.
type CacheParams struct {
	Mr, Nr int
	Kc, Mc, Nc int
}

// ForLevel returns the blocking parameters tuned for the given dispatch
// level, sized so a packed A panel fits L2 and a packed B panel fits L3 at
// the lane widths the portable micro-kernel actually uses.
func ForLevel(level simd.DispatchLevel) CacheParams {
	switch level {
	case simd.DispatchAVX512:
		return CacheParams{Mr: 4, Nr: 32, Kc: 512, Mc: 512, Nc: 4096}
	case simd.DispatchAVX2:
		return CacheParams{Mr: 4, Nr: 16, Kc: 256, Mc: 256, Nc: 2048}
	case simd.DispatchNEON:
		return CacheParams{Mr: 4, Nr: 8, Kc: 256, Mc: 256, Nc: 1024}
	default:
		return CacheParams{Mr: 4, Nr: 8, Kc: 128, Mc: 128, Nc: 512}
	}
}

// PackedASize returns the buffer size needed to hold one packed A panel:
// ceil(Mc/Mr) micro-panels of Mr*Kc elements each.
func (p CacheParams) PackedASize() int {
	panels := (p.Mc + p.Mr - 1) / p.Mr
	return panels * p.Mr * p.Kc
}

// PackedBSize returns the buffer size needed to hold one packed B panel:
// ceil(Nc/Nr) micro-panels of Kc*Nr elements each.
func (p CacheParams) PackedBSize() int {
	panels := (p.Nc + p.Nr - 1) / p.Nr
	return panels * p.Kc * p.Nr
}
