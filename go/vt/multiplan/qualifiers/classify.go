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

package qualifiers

import (
	"github.com/warmchang/citus/go/vt/querytree"
)

// ClauseKind tells how a clause is evaluated in a distributed plan.
type ClauseKind int

const (
	// SelectionClause references at most one table and filters its rows.
	SelectionClause ClauseKind = iota
	// JoinClause references two or more tables.
	JoinClause
)

func (k ClauseKind) String() string {
	if k == JoinClause {
		return "join"
	}
	return "selection"
}

// Classify returns JoinClause when the column references of the clause,
// aggregate and window function arguments included, span two or more range
// table entries, and SelectionClause otherwise.
func Classify(clause querytree.Expr) ClauseKind {
	vars := querytree.PullVarClause(clause)
	if len(vars) == 0 {
		return SelectionClause
	}
	first := vars[0].VarNo
	for _, v := range vars[1:] {
		if v.VarNo != first {
			return JoinClause
		}
	}
	return SelectionClause
}

// IsSelectClause reports whether the clause references at most one table.
func IsSelectClause(clause querytree.Expr) bool {
	return Classify(clause) == SelectionClause
}

// IsJoinClause reports whether the clause references two or more tables.
func IsJoinClause(clause querytree.Expr) bool {
	return Classify(clause) == JoinClause
}

// JoinClauseList returns the join clauses of the list, in order. Clauses
// nested in an OR are not looked at separately.
func JoinClauseList(clauses []querytree.Expr) []querytree.Expr {
	var out []querytree.Expr
	for _, clause := range clauses {
		if IsJoinClause(clause) {
			out = append(out, clause)
		}
	}
	return out
}

// SelectClauseList returns the selection clauses of the list, in order.
func SelectClauseList(clauses []querytree.Expr) []querytree.Expr {
	var out []querytree.Expr
	for _, clause := range clauses {
		if IsSelectClause(clause) {
			out = append(out, clause)
		}
	}
	return out
}
