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

package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/model"
	"github.com/ajroetker/go-infer/ops"
	"github.com/ajroetker/go-infer/tensor"
)

// RunOptions controls evaluator diagnostics; neither affects results.
type RunOptions struct {
	// Verbose logs each dispatched node at slog.LevelDebug.
	Verbose bool
	// Timing logs the wall-clock duration of the whole run at slog.LevelInfo.
	Timing bool
}

// Run evaluates m over the given graph inputs, producing the requested
// outputs; an empty outputs list requests the graph's declared outputs
// (m.OutputIDs()). Each needed node is computed at most once; a
// tensor's backing storage returns to a per-call tensor.Pool the instant
// its last needed consumer has read it, and an eligible unary/binary
// operator overwrites its first operand in place rather than allocating
// when that operand's last consumer is the current node.
func Run(m *model.Model, inputs map[model.NodeID]tensor.Any, outputs []model.NodeID, opts RunOptions) (map[model.NodeID]tensor.Any, error) {
	start := time.Now()
	if len(outputs) == 0 {
		outputs = m.OutputIDs()
	}
	plan, err := BuildPlan(m, outputs)
	if err != nil {
		return nil, err
	}

	pool := tensor.NewPool()
	values := make(map[model.NodeID]tensor.Any, len(plan.Needed))
	remaining := make(map[model.NodeID]int, len(plan.ConsumerCount))
	for id, n := range plan.ConsumerCount {
		remaining[id] = n
	}

	for id := range plan.Needed {
		node, _ := m.FindNode(id)
		if node.Kind != model.KindValue {
			continue
		}
		v, ok := inputs[id]
		if !ok {
			return nil, errs.New(errs.MissingInput, fmt.Sprintf("missing required input %q (node %d)", node.Name, id))
		}
		if v.DType() != modelDTypeToTensor(node.Value.DType) {
			return nil, errs.New(errs.IncorrectInputType, fmt.Sprintf("input %q has the wrong dtype", node.Name))
		}
		values[id] = v
	}

	resolve := func(id model.NodeID) (tensor.Any, error) {
		if v, ok := values[id]; ok {
			return v, nil
		}
		node, _ := m.FindNode(id)
		if node.Kind != model.KindConstant {
			return tensor.Any{}, errs.New(errs.InvalidModel, fmt.Sprintf("node %d has no value and isn't a constant", id))
		}
		v, err := materializeConstant(m, node.Constant)
		if err != nil {
			return tensor.Any{}, err
		}
		values[id] = v
		return v, nil
	}

	for _, id := range plan.Order {
		node, _ := m.FindNode(id)
		op := node.Operator

		args := make([]tensor.Any, len(op.Inputs))
		for i, in := range op.Inputs {
			v, err := resolve(in)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}

		// In-place reuse is only legal when this node is an operand's last
		// needed consumer AND that operand is a computed value the evaluator
		// itself owns, never a caller-supplied graph input or a constant
		// sliced from the model's data blob. The operator layer always
		// targets operand 0; for commutative binary ops whose operand 0 is
		// ineligible, swapping the operands lets operand 1 host the result.
		eligible := func(i int) bool {
			if i >= len(op.Inputs) || remaining[op.Inputs[i]] != 1 {
				return false
			}
			n, ok := m.FindNode(op.Inputs[i])
			return ok && n.Kind == model.KindOperator
		}
		inPlaceIdx := -1
		if eligible(0) {
			inPlaceIdx = 0
		} else if bop, isBinary := binaryOps[op.Op]; isBinary && ops.IsCommutative(bop) && eligible(1) {
			args[0], args[1] = args[1], args[0]
			inPlaceIdx = 1
		}
		inPlace := inPlaceIdx >= 0

		if opts.Verbose {
			slog.Debug("evaluating node", "id", id, "op", op.Op.String(), "name", node.Name)
		}

		out, err := dispatch(op, args, pool, inPlace)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", id, op.Op.String(), err)
		}
		values[id] = out

		for i, in := range op.Inputs {
			remaining[in]--
			// Skip releasing the in-place operand: if the operator honored
			// the request, out aliases this tensor's storage and releasing
			// it would free memory out still owns. The op may have declined
			// (e.g. shape mismatch), in which case this just forgoes
			// recycling a buffer that would otherwise be free for reuse.
			if i == inPlaceIdx {
				continue
			}
			if remaining[in] == 0 {
				// Never recycle a caller-supplied input buffer: the pool
				// only owns storage it (or an operator) allocated, not
				// memory the caller handed in and may reuse or read again
				// after Run returns.
				if n, ok := m.FindNode(in); ok && n.Kind == model.KindValue {
					continue
				}
				releaseAny(pool, values[in])
			}
		}
	}

	result := make(map[model.NodeID]tensor.Any, len(outputs))
	for _, id := range outputs {
		v, ok := values[id]
		if !ok {
			return nil, errs.New(errs.InvalidModel, fmt.Sprintf("requested output %d was never computed", id))
		}
		result[id] = v
	}

	if opts.Timing {
		slog.Info("run complete", "duration", time.Since(start), "nodes_evaluated", len(plan.Order))
	}
	return result, nil
}

func releaseAny(pool *tensor.Pool, v tensor.Any) {
	switch v.DType() {
	case tensor.Float32:
		f, _ := v.AsFloat32()
		tensor.Release(pool, f)
	default:
		i, _ := v.AsInt32()
		tensor.Release(pool, i)
	}
}
