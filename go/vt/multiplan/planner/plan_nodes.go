/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package planner

import (
	"slices"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/multiplan/qualifiers"
	"github.com/warmchang/citus/go/vt/querytree"
)

// MultiSelectNode returns a Select node holding the selection clauses of the
// list, or nil when there are none.
func MultiSelectNode(whereClauseList []querytree.Expr) *operators.Select {
	selectClauses := qualifiers.SelectClauseList(whereClauseList)
	if len(selectClauses) == 0 {
		return nil
	}
	return &operators.Select{SelectClauses: selectClauses}
}

// MultiProjectNode returns a Project node with the columns referenced by the
// target list. A column reference that appears twice is kept once; two
// distinct references to the same column are both kept.
func MultiProjectNode(targets []*querytree.TargetEntry) *operators.Project {
	var columns []*querytree.Var
	for _, column := range querytree.PullVarClauseFromTargetList(targets) {
		if !slices.Contains(columns, column) {
			columns = append(columns, column)
		}
	}
	return &operators.Project{Columns: columns}
}

// MultiExtendedOpNode captures the clauses of q that apply on top of the
// joins.
func MultiExtendedOpNode(q *querytree.Query, lookup metadata.Lookup) *operators.ExtendedOp {
	onlyPushable := !q.HasWindowFuncs
	if q.HasWindowFuncs {
		onlyPushable, _ = SafeToPushdownWindowFunction(q, lookup)
	}
	return &operators.ExtendedOp{
		TargetList:                  q.TargetList,
		GroupClause:                 q.GroupClause,
		SortClause:                  q.SortClause,
		LimitCount:                  q.LimitCount,
		LimitOffset:                 q.LimitOffset,
		LimitOption:                 q.LimitOption,
		HavingQual:                  q.HavingQual,
		DistinctClause:              q.DistinctClause,
		HasDistinctOn:               q.HasDistinctOn,
		HasWindowFuncs:              q.HasWindowFuncs,
		WindowClause:                q.WindowClause,
		OnlyPushableWindowFunctions: onlyPushable,
	}
}

// SafeToPushdownWindowFunction reports whether every window of q is
// partitioned on a distribution column, so that the window functions can be
// evaluated on the workers. detail explains a negative answer.
func SafeToPushdownWindowFunction(q *querytree.Query, lookup metadata.Lookup) (safe bool, detail string) {
	for _, wc := range q.WindowClause {
		if len(wc.PartitionClause) == 0 {
			return false, "Window functions without PARTITION BY on distribution column is currently unsupported"
		}
	}
	for _, wc := range q.WindowClause {
		var targets []*querytree.TargetEntry
		for _, sgc := range wc.PartitionClause {
			if te := q.TargetEntryForRef(sgc.TLESortGroupRef); te != nil {
				targets = append(targets, te)
			}
		}
		if !TargetListOnPartitionColumn(q, targets, lookup) {
			return false, "Window functions with PARTITION BY list missing distribution column is currently unsupported"
		}
	}
	return true, ""
}
