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

// Package infer is a self-contained, CPU-only inference runtime for
// pre-compiled neural-network graphs: it loads a serialized model (see
// package model) and executes it over caller-supplied tensors (see package
// engine) using the GEMM kernel in package gemm and the operator kernels in
// package ops.
package infer

import "github.com/ajroetker/go-infer/errs"

// ErrorKind classifies why a Run or Load call failed; see errs.ErrorKind.
type ErrorKind = errs.ErrorKind

// Error is the error type returned by every user-reachable failure; see errs.Error.
type Error = errs.Error

const (
	MissingInput             = errs.MissingInput
	IncorrectInputType       = errs.IncorrectInputType
	IncompatibleInputShapes  = errs.IncompatibleInputShapes
	InvalidValue             = errs.InvalidValue
	UnsupportedValue         = errs.UnsupportedValue
	InvalidModel             = errs.InvalidModel
)
