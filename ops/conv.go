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
	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/gemm"
	"github.com/ajroetker/go-infer/tensor"
)

// ConvParams carries the spatial attributes of a 2D convolution, NCHW
// layout throughout.
type ConvParams struct {
	StrideH, StrideW int
	PadTop, PadLeft  int
	PadBottom, PadRight int
	// SamePad auto-computes padding so the output spatial size is
	// ceil(input/stride), overriding the fixed pad fields.
	SamePad bool
	Groups  int
}

// samePad returns the (before, after) padding along one axis so that the
// output size is ceil(in/stride): total = max(0, (out-1)*stride + k - in),
// split evenly with the odd element after.
func samePad(in, k, stride int) (int, int) {
	out := (in + stride - 1) / stride
	total := (out-1)*stride + k - in
	if total < 0 {
		total = 0
	}
	return total / 2, total - total/2
}

// Conv computes a 2D convolution of x (N,Cin,H,W) with weight w
// (Cout,Cin/groups,Kh,Kw) and optional bias (Cout,), via im2col followed by
// gemm.MatMul. The output tensor and the
// im2col scratch matrix are both drawn from pool.
func Conv(x, w tensor.Any, bias *tensor.Tensor[float32], p ConvParams, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "conv requires float32 input", err)
	}
	wf, err := w.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "conv requires float32 weight", err)
	}
	xs, ws := xf.Shape(), wf.Shape()
	if len(xs) != 4 || len(ws) != 4 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "conv: input and weight must be rank 4 (NCHW / OIHW)")
	}
	n, cin, h, wid := xs[0], xs[1], xs[2], xs[3]
	cout, cinPerGroup, kh, kw := ws[0], ws[1], ws[2], ws[3]
	if p.Groups <= 0 {
		p.Groups = 1
	}
	if p.StrideH <= 0 {
		p.StrideH = 1
	}
	if p.StrideW <= 0 {
		p.StrideW = 1
	}
	if p.SamePad {
		p.PadTop, p.PadBottom = samePad(h, kh, p.StrideH)
		p.PadLeft, p.PadRight = samePad(wid, kw, p.StrideW)
	}
	if cin/p.Groups != cinPerGroup {
		return tensor.Any{}, errs.New(errs.IncompatibleInputShapes, "conv: weight's input-channel dim disagrees with groups")
	}
	coutPerGroup := cout / p.Groups

	outH := (h+p.PadTop+p.PadBottom-kh)/p.StrideH + 1
	outW := (wid+p.PadLeft+p.PadRight-kw)/p.StrideW + 1
	if outH <= 0 || outW <= 0 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "conv: output spatial size is non-positive")
	}

	out := tensor.AllocTensor[float32](pool, []int{n, cout, outH, outW})
	outData, _ := out.Data()
	xData, xOK := xf.Data()
	if !xOK {
		xf = xf.ToContiguous()
		xData, _ = xf.Data()
	}
	wData, wOK := wf.Data()
	if !wOK {
		wf = wf.ToContiguous()
		wData, _ = wf.Data()
	}

	colRows := cinPerGroup * kh * kw
	colCols := outH * outW
	col := pool.AllocFloat32(colRows * colCols)
	defer pool.ReleaseFloat32(col)

	for ni := 0; ni < n; ni++ {
		for g := 0; g < p.Groups; g++ {
			im2col(xData, col, cin, h, wid, ni, g*cinPerGroup, cinPerGroup, kh, kw, p.StrideH, p.StrideW, p.PadTop, p.PadLeft, outH, outW)

			wOffset := g * coutPerGroup * cinPerGroup * kh * kw
			wSlice := wData[wOffset : wOffset+coutPerGroup*colRows]

			outOffset := (ni*cout + g*coutPerGroup) * outH * outW
			cSlice := outData[outOffset : outOffset+coutPerGroup*colCols]
			gemm.MatMul(wSlice, col, cSlice, coutPerGroup, colCols, colRows, 1, 0)

			if bias != nil {
				biasData, _ := bias.Data()
				for oc := 0; oc < coutPerGroup; oc++ {
					b := biasData[g*coutPerGroup+oc]
					row := cSlice[oc*colCols : (oc+1)*colCols]
					for i := range row {
						row[i] += b
					}
				}
			}
		}
	}
	return tensor.FromFloat32(out), nil
}

// im2col unrolls the receptive field of every output position of one (n,
// group) slice into a [cinPerGroup*kh*kw, outH*outW] matrix, zero-padding
// positions that fall outside the input.
func im2col(x, col []float32, cin, h, w, n, cStart, cinPerGroup, kh, kw, strideH, strideW, padTop, padLeft, outH, outW int) {
	row := 0
	for c := 0; c < cinPerGroup; c++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				outCol := 0
				for oy := 0; oy < outH; oy++ {
					iy := oy*strideH - padTop + ky
					for ox := 0; ox < outW; ox++ {
						ix := ox*strideW - padLeft + kx
						var v float32
						if iy >= 0 && iy < h && ix >= 0 && ix < w {
							v = x[((n*cin+cStart+c)*h+iy)*w+ix]
						}
						col[row*outH*outW+outCol] = v
						outCol++
					}
				}
				row++
			}
		}
	}
}

// PoolParams carries the spatial attributes of a 2D pooling op.
type PoolParams struct {
	Kh, Kw           int
	StrideH, StrideW int
	PadTop, PadLeft  int
	PadBottom, PadRight int
}

// MaxPool2d computes 2D max pooling over x (N,C,H,W).
func MaxPool2d(x tensor.Any, p PoolParams, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "max_pool requires float32 input", err)
	}
	return pool2d(xf, p, true, pool)
}

// AveragePool2d computes 2D average pooling over x (N,C,H,W), averaging
// only the in-bounds positions of each window.
func AveragePool2d(x tensor.Any, p PoolParams, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "average_pool requires float32 input", err)
	}
	return pool2d(xf, p, false, pool)
}

func pool2d(xf *tensor.Tensor[float32], p PoolParams, isMax bool, pool *tensor.Pool) (tensor.Any, error) {
	shape := xf.Shape()
	if len(shape) != 4 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "pool: input must be rank 4 (NCHW)")
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if p.StrideH <= 0 {
		p.StrideH = 1
	}
	if p.StrideW <= 0 {
		p.StrideW = 1
	}
	outH := (h+p.PadTop+p.PadBottom-p.Kh)/p.StrideH + 1
	outW := (w+p.PadLeft+p.PadRight-p.Kw)/p.StrideW + 1
	if outH <= 0 || outW <= 0 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "pool: output spatial size is non-positive")
	}
	out := tensor.AllocTensor[float32](pool, []int{n, c, outH, outW})
	outData, _ := out.Data()
	xData, ok := xf.Data()
	if !ok {
		xf = xf.ToContiguous()
		xData, _ = xf.Data()
	}

	idx := 0
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			for oy := 0; oy < outH; oy++ {
				for ox := 0; ox < outW; ox++ {
					var best float32
					sum := float32(0)
					count := 0
					for ky := 0; ky < p.Kh; ky++ {
						iy := oy*p.StrideH - p.PadTop + ky
						for kx := 0; kx < p.Kw; kx++ {
							ix := ox*p.StrideW - p.PadLeft + kx
							inBounds := iy >= 0 && iy < h && ix >= 0 && ix < w
							if isMax {
								// Padded positions contribute zero.
								var v float32
								if inBounds {
									v = xData[((ni*c+ci)*h+iy)*w+ix]
								}
								if v > best || (ky == 0 && kx == 0) {
									best = v
								}
							} else if inBounds {
								sum += xData[((ni*c+ci)*h+iy)*w+ix]
								count++
							}
						}
					}
					if isMax {
						outData[idx] = best
					} else if count > 0 {
						outData[idx] = sum / float32(count)
					} else {
						outData[idx] = 0
					}
					idx++
				}
			}
		}
	}
	return tensor.FromFloat32(out), nil
}

// ConvTranspose computes a 2D transposed convolution (a.k.a. deconvolution)
// of x (N,Cin,H,W) with weight w (Cin,Cout,Kh,Kw) via col2im: the GEMM
// product of w^T and x scattered back into the (larger) output via
// overlap-add, the mirror image of Conv's im2col+GEMM. Groups and output
// padding are not supported; only the common single-group case is.
func ConvTranspose(x, w tensor.Any, bias *tensor.Tensor[float32], p ConvParams, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "conv_transpose requires float32 input", err)
	}
	wf, err := w.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "conv_transpose requires float32 weight", err)
	}
	xs, ws := xf.Shape(), wf.Shape()
	if len(xs) != 4 || len(ws) != 4 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "conv_transpose: input and weight must be rank 4")
	}
	if p.Groups > 1 {
		return tensor.Any{}, errs.New(errs.UnsupportedValue, "conv_transpose: groups > 1 is not supported")
	}
	if p.StrideH <= 0 {
		p.StrideH = 1
	}
	if p.StrideW <= 0 {
		p.StrideW = 1
	}
	n, cin, h, wid := xs[0], xs[1], xs[2], xs[3]
	cinW, cout, kh, kw := ws[0], ws[1], ws[2], ws[3]
	if cinW != cin {
		return tensor.Any{}, errs.New(errs.IncompatibleInputShapes, "conv_transpose: weight's input-channel dim disagrees with input")
	}

	outH := (h-1)*p.StrideH - p.PadTop - p.PadBottom + kh
	outW := (wid-1)*p.StrideW - p.PadLeft - p.PadRight + kw
	if outH <= 0 || outW <= 0 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "conv_transpose: output spatial size is non-positive")
	}

	out := tensor.AllocTensor[float32](pool, []int{n, cout, outH, outW})
	outData, _ := out.Data()
	clear(outData) // col2im scatter-adds; a reused pool buffer may hold stale values.
	xData, xOK := xf.Data()
	if !xOK {
		xf = xf.ToContiguous()
		xData, _ = xf.Data()
	}
	wData, wOK := wf.Data()
	if !wOK {
		wf = wf.ToContiguous()
		wData, _ = wf.Data()
	}

	colRows := cout * kh * kw
	colCols := h * wid
	col := pool.AllocFloat32(colRows * colCols)
	defer pool.ReleaseFloat32(col)
	wT := pool.AllocFloat32(cin * cout * kh * kw)
	defer pool.ReleaseFloat32(wT)

	// col = w^T @ x_slice: [cout*kh*kw, cin]-shaped weight times [cin, h*w] input.
	transposeFirstTwoDimsInto(wData, wT, cin, cout*kh*kw)
	for ni := 0; ni < n; ni++ {
		xSlice := xData[ni*cin*colCols : (ni+1)*cin*colCols]
		gemm.MatMul(wT, xSlice, col, colRows, colCols, cin, 1, 0)

		col2im(col, outData, cout, outH, outW, ni, kh, kw, p.StrideH, p.StrideW, p.PadTop, p.PadLeft, h, wid)
	}

	if bias != nil {
		biasData, _ := bias.Data()
		plane := outH * outW
		for ni := 0; ni < n; ni++ {
			for oc := 0; oc < cout; oc++ {
				b := biasData[oc]
				row := outData[(ni*cout+oc)*plane : (ni*cout+oc+1)*plane]
				for i := range row {
					row[i] += b
				}
			}
		}
	}
	return tensor.FromFloat32(out), nil
}

// transposeFirstTwoDimsInto writes the [cols, rows] transpose of a [rows,
// cols] row-major matrix into out, the tiny matrix transpose ConvTranspose
// needs to turn (Cin, Cout*Kh*Kw) weight storage into GEMM's expected
// (Cout*Kh*Kw, Cin) left operand.
func transposeFirstTwoDimsInto(data, out []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c*rows+r] = data[r*cols+c]
		}
	}
}

// col2im scatter-adds the [cout*kh*kw, h*w] column matrix of one batch
// element back into the (larger, strided) output plane, the inverse of
// im2col's gather.
func col2im(col []float32, out []float32, cout, outH, outW, n, kh, kw, strideH, strideW, padTop, padLeft, h, w int) {
	row := 0
	for c := 0; c < cout; c++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				inCol := 0
				for iy := 0; iy < h; iy++ {
					oy := iy*strideH - padTop + ky
					for ix := 0; ix < w; ix++ {
						ox := ix*strideW - padLeft + kx
						if oy >= 0 && oy < outH && ox >= 0 && ox < outW {
							out[((n*cout+c)*outH+oy)*outW+ox] += col[row*h*w+inCol]
						}
						inCol++
					}
				}
				row++
			}
		}
	}
}

// GlobalAveragePool averages each (H,W) plane of x (N,C,H,W) to a single
// value, producing an (N,C,1,1) tensor.
func GlobalAveragePool(x tensor.Any, pool *tensor.Pool) (tensor.Any, error) {
	xf, err := x.AsFloat32()
	if err != nil {
		return tensor.Any{}, errs.Wrap(errs.IncorrectInputType, "global_average_pool requires float32 input", err)
	}
	shape := xf.Shape()
	if len(shape) != 4 {
		return tensor.Any{}, errs.New(errs.InvalidValue, "global_average_pool: input must be rank 4 (NCHW)")
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out := tensor.AllocTensor[float32](pool, []int{n, c, 1, 1})
	outData, _ := out.Data()
	xData, ok := xf.Data()
	if !ok {
		xf = xf.ToContiguous()
		xData, _ = xf.Data()
	}
	plane := h * w
	for i := 0; i < n*c; i++ {
		sum := float32(0)
		for _, v := range xData[i*plane : (i+1)*plane] {
			sum += v
		}
		outData[i] = sum / float32(plane)
	}
	return tensor.FromFloat32(out), nil
}
