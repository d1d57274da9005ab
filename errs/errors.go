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

// Package errs is the error taxonomy shared by the ops, model and engine
// layers of this module and re-exported at the module root as
// infer.Error/infer.ErrorKind. It lives in its own leaf package, importing
// nothing from this module, so the lower layers can return it without importing the root
// package that depends on them.
package errs

import "fmt"

// ErrorKind classifies why a Run or Load call failed, so callers can match
// on the kind instead of parsing message text.
type ErrorKind int

const (
	// MissingInput means a required operator input was absent.
	MissingInput ErrorKind = iota
	// IncorrectInputType means an operator input had the wrong element type.
	IncorrectInputType
	// IncompatibleInputShapes means a broadcast or shape-conformance check failed.
	IncompatibleInputShapes
	// InvalidValue means an attribute or input value violates a constraint.
	InvalidValue
	// UnsupportedValue means the value is legal per the opcode set but not implemented.
	UnsupportedValue
	// InvalidModel means the serialized model failed a structural check at load time.
	InvalidModel
)

// String names the error kind.
func (k ErrorKind) String() string {
	switch k {
	case MissingInput:
		return "MissingInput"
	case IncorrectInputType:
		return "IncorrectInputType"
	case IncompatibleInputShapes:
		return "IncompatibleInputShapes"
	case InvalidValue:
		return "InvalidValue"
	case UnsupportedValue:
		return "UnsupportedValue"
	case InvalidModel:
		return "InvalidModel"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every user-reachable failure in this
// module: a kind callers can switch on, plus a short static message and an
// optional wrapped cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("infer: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("infer: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error wrapping a lower-level cause (e.g. a tensor package error).
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
