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
	"github.com/warmchang/citus/go/vt/log"
	"github.com/warmchang/citus/go/vt/multiplan/tableset"
	"github.com/warmchang/citus/go/vt/querytree"
)

// ApplicableJoinClauses returns the join clauses that can be evaluated when
// the table rightID is joined to the tables in left: every column they
// reference comes from left or from rightID, and at least one comes from
// rightID.
func ApplicableJoinClauses(left tableset.TableSet, rightID int, clauses []querytree.Expr) []querytree.Expr {
	joined := left.With(rightID)
	var applicable []querytree.Expr
	for _, clause := range clauses {
		referencesRight := false
		covered := true
		for _, v := range querytree.PullVarClause(clause) {
			if v.VarNo == rightID {
				referencesRight = true
			}
			if !joined.Contains(v.VarNo) {
				covered = false
				break
			}
		}
		if covered && referencesRight {
			applicable = append(applicable, clause)
		}
	}
	return applicable
}

// IsEqualityOpExpr reports whether the clause is a binary equality operator.
func IsEqualityOpExpr(clause querytree.Expr) bool {
	op, ok := clause.(*querytree.OpExpr)
	return ok && op.Operator == "=" && len(op.Args) == 2
}

// LeftColumn returns the left operand of a binary operator if it is a column
// reference, ignoring implicit coercions. Otherwise it returns nil.
func LeftColumn(op *querytree.OpExpr) *querytree.Var {
	if len(op.Args) != 2 {
		return nil
	}
	v, _ := querytree.StripImplicitCoercions(op.Args[0]).(*querytree.Var)
	return v
}

// RightColumn is LeftColumn for the right operand.
func RightColumn(op *querytree.OpExpr) *querytree.Var {
	if len(op.Args) != 2 {
		return nil
	}
	v, _ := querytree.StripImplicitCoercions(op.Args[1]).(*querytree.Var)
	return v
}

// columnEquality returns the clause as an equality between two columns,
// with both operands.
func columnEquality(clause querytree.Expr) (*querytree.OpExpr, *querytree.Var, *querytree.Var, bool) {
	if !IsEqualityOpExpr(clause) {
		return nil, nil, nil, false
	}
	op := clause.(*querytree.OpExpr)
	left, right := LeftColumn(op), RightColumn(op)
	if left == nil || right == nil {
		return nil, nil, nil, false
	}
	return op, left, right, true
}

// SinglePartitionJoinClause finds the first equality between two columns
// where one side is the first of the partition columns and both sides have
// the same type. typeMismatch is set when such a clause was seen with
// differing types.
func SinglePartitionJoinClause(partitionColumns []*querytree.Var, clauses []querytree.Expr) (clause *querytree.OpExpr, typeMismatch bool) {
	if len(partitionColumns) == 0 || partitionColumns[0] == nil {
		return nil, false
	}
	partitionColumn := partitionColumns[0]
	for _, c := range clauses {
		op, left, right, ok := columnEquality(c)
		if !ok {
			continue
		}
		if !querytree.Equals(left, partitionColumn) && !querytree.Equals(right, partitionColumn) {
			continue
		}
		if left.VarType == right.VarType {
			return op, typeMismatch
		}
		log.V(1).Infof("single partition column types do not match: %s", querytree.String(op))
		typeMismatch = true
	}
	return nil, typeMismatch
}

// DualPartitionJoinClause finds the first equality between two columns of
// the same type.
func DualPartitionJoinClause(clauses []querytree.Expr) *querytree.OpExpr {
	for _, c := range clauses {
		op, left, right, ok := columnEquality(c)
		if !ok {
			continue
		}
		if left.VarType == right.VarType {
			return op
		}
		log.V(1).Infof("dual partition column types do not match: %s", querytree.String(op))
	}
	return nil
}

// JoinOnColumns reports whether one of the clauses equates candidate with one
// of the current columns.
func JoinOnColumns(current []*querytree.Var, candidate *querytree.Var, clauses []querytree.Expr) bool {
	if candidate == nil {
		return false
	}
	for _, column := range current {
		if column == nil {
			continue
		}
		for _, c := range clauses {
			_, left, right, ok := columnEquality(c)
			if !ok {
				continue
			}
			if querytree.Equals(left, column) && querytree.Equals(right, candidate) {
				return true
			}
			if querytree.Equals(left, candidate) && querytree.Equals(right, column) {
				return true
			}
		}
	}
	return false
}
