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

package tensor

// maxBuffersPerClass bounds how many same-size buffers a Pool retains per
// size class; the oldest is dropped on overflow.
const maxBuffersPerClass = 4

// Pool is a process-private, per-Model.Run free-list of buffers, keyed by
// element count, so operators can recycle working storage instead of
// allocating on every invocation. A Pool is created fresh for each Run and
// never shared across Run calls.
type Pool struct {
	freeF32 map[int][][]float32
	freeI32 map[int][][]int32
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{
		freeF32: make(map[int][][]float32),
		freeI32: make(map[int][][]int32),
	}
}

// AllocFloat32 returns an uninitialized (possibly reused) buffer of n
// float32 elements. Reused buffers retain their previous contents;
// operators that need zeroed storage must clear it themselves. A nil Pool
// (a caller running without pool-based reuse, e.g. a unit test) simply
// allocates directly.
func (p *Pool) AllocFloat32(n int) []float32 {
	if p == nil {
		return make([]float32, n)
	}
	if bufs := p.freeF32[n]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		p.freeF32[n] = bufs[:len(bufs)-1]
		return buf
	}
	return make([]float32, n)
}

// AllocInt32 is AllocFloat32 for int32 buffers.
func (p *Pool) AllocInt32(n int) []int32 {
	if p == nil {
		return make([]int32, n)
	}
	if bufs := p.freeI32[n]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		p.freeI32[n] = bufs[:len(bufs)-1]
		return buf
	}
	return make([]int32, n)
}

// ReleaseFloat32 returns buf to the pool's free-list for its size class. If
// the class already holds maxBuffersPerClass buffers, the oldest retained
// buffer is dropped to make room for buf rather than growing the free-list
// further. A
// nil Pool discards buf (there is no free-list to return it to).
func (p *Pool) ReleaseFloat32(buf []float32) {
	if p == nil {
		return
	}
	n := len(buf)
	if n == 0 {
		return
	}
	bufs := p.freeF32[n]
	if len(bufs) >= maxBuffersPerClass {
		copy(bufs, bufs[1:])
		bufs = bufs[:len(bufs)-1]
	}
	p.freeF32[n] = append(bufs, buf)
}

// ReleaseInt32 is ReleaseFloat32 for int32 buffers.
func (p *Pool) ReleaseInt32(buf []int32) {
	if p == nil {
		return
	}
	n := len(buf)
	if n == 0 {
		return
	}
	bufs := p.freeI32[n]
	if len(bufs) >= maxBuffersPerClass {
		copy(bufs, bufs[1:])
		bufs = bufs[:len(bufs)-1]
	}
	p.freeI32[n] = append(bufs, buf)
}

// AllocTensor returns an uninitialized contiguous tensor of shape, backed by
// a pool-recycled buffer.
func AllocTensor[T Elem](p *Pool, shape []int) *Tensor[T] {
	n := prod(shape)
	var storage []T
	var zero T
	switch any(zero).(type) {
	case float32:
		storage = any(p.AllocFloat32(n)).([]T)
	default:
		storage = any(p.AllocInt32(n)).([]T)
	}
	return &Tensor[T]{
		shape:   append([]int(nil), shape...),
		strides: defaultStrides(shape),
		storage: storage,
	}
}

// Release returns t's backing storage to the pool, if t spans all of it
// (offset 0 and len(storage) == Len()). It cannot tell whether another view
// still references that storage. The evaluator only
// calls this once a tensor's consumer count has reached zero.
func Release[T Elem](p *Pool, t *Tensor[T]) {
	if t.offset != 0 || len(t.storage) != t.Len() {
		return
	}
	switch v := any(t.storage).(type) {
	case []float32:
		p.ReleaseFloat32(v)
	case []int32:
		p.ReleaseInt32(v)
	}
}
