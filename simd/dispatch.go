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

import "os"

// DispatchLevel identifies the widest vector extension this process detected
// at startup. It never changes after init; each GEMM call reads it once to
// pick its blocking sizes, never per element.
type DispatchLevel int

const (
	// DispatchScalar means no detected vector extension; lane width is 4.
	DispatchScalar DispatchLevel = iota
	// DispatchAVX2 is 256-bit x86 SIMD (8 float32 lanes).
	DispatchAVX2
	// DispatchAVX512 is 512-bit x86 SIMD (16 float32 lanes).
	DispatchAVX512
	// DispatchNEON is 128-bit ARM SIMD (4 float32 lanes).
	DispatchNEON
)

// String returns a human-readable dispatch level name.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

var currentLevel DispatchLevel
var currentLanes int

func init() {
	if noSimdEnv() {
		currentLevel = DispatchScalar
		currentLanes = 4
		return
	}
	detectDispatchLevel()
}

// noSimdEnv lets callers and tests force the scalar fallback.
func noSimdEnv() bool {
	v := os.Getenv("GOINFER_NO_SIMD")
	return v == "1" || v == "true"
}

// Current returns the dispatch level selected once at process init.
func Current() DispatchLevel { return currentLevel }

// CurrentLanes returns the float32 lane width for the current dispatch
// level; int32 lanes use the same width.
func CurrentLanes() int { return currentLanes }
