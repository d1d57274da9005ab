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

	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/tensor"
)

// CoordTransform selects how an output coordinate maps back to input space.
type CoordTransform int

const (
	HalfPixel CoordTransform = iota
	Asymmetric
)

// NearestMode selects how a non-integral source coordinate rounds to a
// pixel index in nearest-neighbor resize.
type NearestMode int

const (
	RoundPreferFloor NearestMode = iota
	RoundPreferCeil
	Floor
	Ceil
)

// ResizeParams carries Resize's attributes; ScaleH/ScaleW are output/input
// ratios along H and W (the only resizable axes).
type ResizeParams struct {
	ScaleH, ScaleW float32
	Transform      CoordTransform
	Nearest        NearestMode
	Bilinear       bool
}

func srcCoord(dst int, scale float32, transform CoordTransform) float32 {
	switch transform {
	case Asymmetric:
		return float32(dst) / scale
	default: // HalfPixel
		return (float32(dst)+0.5)/scale - 0.5
	}
}

func nearestIndex(x float32, mode NearestMode, limit int) int {
	var idx int
	switch mode {
	case Floor:
		idx = int(math.Floor(float64(x)))
	case Ceil:
		idx = int(math.Ceil(float64(x)))
	case RoundPreferCeil:
		idx = int(math.Floor(float64(x) + 0.5))
	default: // RoundPreferFloor
		idx = int(math.Ceil(float64(x) - 0.5))
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= limit {
		idx = limit - 1
	}
	return idx
}

// Resize resamples x (N,C,H,W) to (N,C,outH,outW); only the H/W axes may
// change (resizing N or C is UnsupportedValue, not InvalidValue, since it's
// legal in the upstream op set but not implemented here). An (outH,outW) of
// (0,0) returns an empty tensor without sampling.
func Resize(x tensor.Any, outH, outW int, p ResizeParams, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "resize requires float32 input", err)
	}
	shape := xf.Shape()
	if len(shape) != 4 {
		return tensor.Any{}, errs.New(errs.UnsupportedValue, "resize: only NCHW 4D tensors are supported")
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	// The model supplies either explicit output sizes (negative means "not
	// given") or scale factors; derive whichever is missing, since the
	// coordinate mapping needs both. An explicit size of zero stays zero.
	if outH < 0 {
		if p.ScaleH <= 0 {
			return tensor.Any{}, errs.New(errs.InvalidValue, "resize: neither output height nor height scale given")
		}
		outH = int(p.ScaleH * float32(h))
	}
	if outW < 0 {
		if p.ScaleW <= 0 {
			return tensor.Any{}, errs.New(errs.InvalidValue, "resize: neither output width nor width scale given")
		}
		outW = int(p.ScaleW * float32(w))
	}
	if p.ScaleH == 0 && h > 0 {
		p.ScaleH = float32(outH) / float32(h)
	}
	if p.ScaleW == 0 && w > 0 {
		p.ScaleW = float32(outW) / float32(w)
	}
	out := tensor.AllocTensor[float32](pool, []int{n, c, outH, outW})
	if outH == 0 || outW == 0 {
		return tensor.FromFloat32(out), nil
	}
	outData, _ := out.Data()
	xData, ok := xf.Data()
	if !ok {
		xf = xf.ToContiguous()
		xData, _ = xf.Data()
	}

	idx := 0
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			base := (ni*c + ci) * h * w
			for oy := 0; oy < outH; oy++ {
				sy := srcCoord(oy, p.ScaleH, p.Transform)
				for ox := 0; ox < outW; ox++ {
					sx := srcCoord(ox, p.ScaleW, p.Transform)
					if p.Bilinear {
						outData[idx] = bilinearSample(xData, base, h, w, sy, sx)
					} else {
						iy := nearestIndex(sy, p.Nearest, h)
						ix := nearestIndex(sx, p.Nearest, w)
						outData[idx] = xData[base+iy*w+ix]
					}
					idx++
				}
			}
		}
	}
	return tensor.FromFloat32(out), nil
}

func bilinearSample(data []float32, base, h, w int, sy, sx float32) float32 {
	y0 := int(math.Floor(float64(sy)))
	x0 := int(math.Floor(float64(sx)))
	y1, x1 := y0+1, x0+1
	dy, dx := sy-float32(y0), sx-float32(x0)

	y0c, y1c := clampIdx(y0, h), clampIdx(y1, h)
	x0c, x1c := clampIdx(x0, w), clampIdx(x1, w)

	v00 := data[base+y0c*w+x0c]
	v01 := data[base+y0c*w+x1c]
	v10 := data[base+y1c*w+x0c]
	v11 := data[base+y1c*w+x1c]

	top := v00 + (v01-v00)*dx
	bottom := v10 + (v11-v10)*dx
	return top + (bottom-top)*dy
}

func clampIdx(i, limit int) int {
	if i < 0 {
		return 0
	}
	if i >= limit {
		return limit - 1
	}
	return i
}
