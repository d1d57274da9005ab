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

// Package engine is the graph evaluator: it walks backward
// from the requested outputs to find the minimal needed node set, orders
// them topologically, tracks a consumer count per node so a tensor's
// backing storage returns to the pool the instant its last consumer has
// run, and drives operator dispatch (package ops) over the decoded graph
// (package model).
package engine

import (
	"github.com/ajroetker/go-infer/errs"
	"github.com/ajroetker/go-infer/model"
)

// Plan is the result of analyzing a Model against a requested output set:
// the needed node IDs in dependency order, and how many needed consumers
// reference each node's value.
type Plan struct {
	Order         []model.NodeID
	ConsumerCount map[model.NodeID]int
	Needed        map[model.NodeID]bool
}

// BuildPlan computes the minimal evaluation order and consumer counts
// needed to produce outputs from m, via a reverse walk over operator input
// edges. Nodes outputs depends on but that aren't computed
// operators (graph inputs, constants) are included in Needed but not in
// Order, since they don't need dispatching.
func BuildPlan(m *model.Model, outputs []model.NodeID) (*Plan, error) {
	needed := make(map[model.NodeID]bool)
	var order []model.NodeID

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[model.NodeID]int)

	var visit func(id model.NodeID) error
	visit = func(id model.NodeID) error {
		if color[id] == black {
			return nil
		}
		if color[id] == gray {
			return errs.New(errs.InvalidModel, "cycle detected while planning evaluation order")
		}
		color[id] = gray
		node, ok := m.FindNode(id)
		if !ok {
			return errs.New(errs.InvalidModel, "plan references an out-of-range node")
		}
		needed[id] = true
		if node.Kind == model.KindOperator {
			for _, in := range node.Operator.Inputs {
				if err := visit(in); err != nil {
					return err
				}
			}
			order = append(order, id)
		}
		color[id] = black
		return nil
	}

	for _, id := range outputs {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	consumerCount := make(map[model.NodeID]int)
	for _, id := range order {
		node, _ := m.FindNode(id)
		for _, in := range node.Operator.Inputs {
			consumerCount[in]++
		}
	}
	// Requested outputs always count as consumed externally, so the
	// evaluator never releases a buffer the caller still needs to read.
	for _, id := range outputs {
		consumerCount[id]++
	}

	return &Plan{Order: order, ConsumerCount: consumerCount, Needed: needed}, nil
}
