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
	"fmt"
	"slices"

	"github.com/warmchang/citus/go/vt/multiplan/joinorder"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/multiplan/qualifiers"
	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// ruleApplyFunc joins left and right using one join rule. clauses are the
// join clauses applicable between the two sides.
type ruleApplyFunc func(left, right operators.Node, partitionColumns []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node

var ruleApplyFuncs = map[joinorder.JoinRuleType]ruleApplyFunc{
	joinorder.ReferenceJoin:                 applyReferenceJoin,
	joinorder.LocalPartitionJoin:            applyLocalJoin,
	joinorder.SingleHashPartitionJoin:       applySingleHashPartitionJoin,
	joinorder.SingleRangePartitionJoin:      applySingleRangePartitionJoin,
	joinorder.DualPartitionJoin:             applyDualPartitionJoin,
	joinorder.CartesianProductReferenceJoin: applyCartesianProductReferenceJoin,
	joinorder.CartesianProduct:              applyCartesianProduct,
}

// applyJoinRule joins the tree built so far with the next table. right must
// output exactly one table, which keeps the tree left deep.
func applyJoinRule(left, right operators.Node, rule joinorder.JoinRuleType, partitionColumns []*querytree.Var, joinType querytree.JoinType, joinClauses []querytree.Expr) operators.Node {
	rightIDs := operators.OutputTableIDs(right)
	if len(rightIDs) != 1 {
		panic(vterrors.VT13001(fmt.Sprintf("right side of a join outputs %d tables", len(rightIDs))))
	}
	applicable := qualifiers.ApplicableJoinClauses(operators.OutputTableSet(left), rightIDs[0], joinClauses)

	apply, ok := ruleApplyFuncs[rule]
	if !ok {
		panic(vterrors.VT13001(fmt.Sprintf("no apply function for join rule %q", rule)))
	}
	node := apply(left, right, partitionColumns, joinType, applicable)

	// outer joins keep every clause, not only the applicable ones
	if join, ok := node.(*operators.Join); ok && joinType != querytree.JoinInner {
		join.JoinClauses = slices.Clone(joinClauses)
	}
	joinRulesApplied.Add(rule.String(), 1)
	return node
}

func newJoin(rule joinorder.JoinRuleType, left, right operators.Node, joinType querytree.JoinType, clauses []querytree.Expr) *operators.Join {
	join := &operators.Join{
		JoinRuleType: rule,
		JoinType:     joinType,
		JoinClauses:  clauses,
	}
	operators.SetLeftChild(join, left)
	operators.SetRightChild(join, right)
	return join
}

func applyReferenceJoin(left, right operators.Node, _ []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	return newJoin(joinorder.ReferenceJoin, left, right, joinType, clauses)
}

func applyLocalJoin(left, right operators.Node, _ []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	return newJoin(joinorder.LocalPartitionJoin, left, right, joinType, clauses)
}

func applyCartesianProductReferenceJoin(left, right operators.Node, _ []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	return newJoin(joinorder.CartesianProductReferenceJoin, left, right, joinType, clauses)
}

func applyCartesianProduct(left, right operators.Node, _ []*querytree.Var, _ querytree.JoinType, _ []querytree.Expr) operators.Node {
	cp := &operators.CartesianProduct{}
	operators.SetLeftChild(cp, left)
	operators.SetRightChild(cp, right)
	return cp
}

func applySingleHashPartitionJoin(left, right operators.Node, partitionColumns []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	join := applySinglePartitionJoin(left, right, partitionColumns, joinType, clauses)
	join.JoinRuleType = joinorder.SingleHashPartitionJoin
	return join
}

func applySingleRangePartitionJoin(left, right operators.Node, partitionColumns []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	join := applySinglePartitionJoin(left, right, partitionColumns, joinType, clauses)
	join.JoinRuleType = joinorder.SingleRangePartitionJoin
	return join
}

// applySinglePartitionJoin repartitions the side that is not distributed on
// the first partition column. The Partition is keyed on that side's operand
// of the join clause and split on the shards of the partition column's table.
func applySinglePartitionJoin(left, right operators.Node, partitionColumns []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) *operators.Join {
	if len(partitionColumns) == 0 || partitionColumns[0] == nil {
		panic(vterrors.VT13001("single partition join without a partition column"))
	}
	partitionColumn := partitionColumns[0]
	partitionTableID := partitionColumn.VarNo

	joinClause, _ := qualifiers.SinglePartitionJoinClause(partitionColumns, clauses)
	if joinClause == nil {
		panic(vterrors.VT13001("single partition join without an equality clause on " + querytree.String(partitionColumn)))
	}
	leftColumn := qualifiers.LeftColumn(joinClause)
	rightColumn := qualifiers.RightColumn(joinClause)

	partition := &operators.Partition{}
	switch {
	case querytree.Equals(partitionColumn, leftColumn):
		partition.PartitionColumn = rightColumn
		partition.SplitPointTableID = partitionTableID
	case querytree.Equals(partitionColumn, rightColumn):
		partition.PartitionColumn = leftColumn
		partition.SplitPointTableID = partitionTableID
	}

	collect := &operators.Collect{}
	join := &operators.Join{JoinType: joinType, JoinClauses: clauses}
	if partitionTableID == operators.OutputTableIDs(right)[0] {
		operators.SetChild(partition, left)
		operators.SetChild(collect, partition)
		operators.SetLeftChild(join, collect)
		operators.SetRightChild(join, right)
	} else {
		operators.SetChild(partition, right)
		operators.SetChild(collect, partition)
		operators.SetLeftChild(join, left)
		operators.SetRightChild(join, collect)
	}
	return join
}

// applyDualPartitionJoin repartitions both sides, each on its own operand of
// the join clause.
func applyDualPartitionJoin(left, right operators.Node, _ []*querytree.Var, joinType querytree.JoinType, clauses []querytree.Expr) operators.Node {
	joinClause := qualifiers.DualPartitionJoinClause(clauses)
	if joinClause == nil {
		panic(vterrors.VT13001("dual partition join without an equality clause"))
	}
	leftColumn := qualifiers.LeftColumn(joinClause)
	rightColumn := qualifiers.RightColumn(joinClause)
	rightTableID := operators.OutputTableIDs(right)[0]

	leftPartition := &operators.Partition{}
	rightPartition := &operators.Partition{}
	if leftColumn.VarNo == rightTableID {
		leftPartition.PartitionColumn = rightColumn
		rightPartition.PartitionColumn = leftColumn
	} else {
		leftPartition.PartitionColumn = leftColumn
		rightPartition.PartitionColumn = rightColumn
	}
	operators.SetChild(leftPartition, left)
	operators.SetChild(rightPartition, right)

	leftCollect := &operators.Collect{}
	rightCollect := &operators.Collect{}
	operators.SetChild(leftCollect, leftPartition)
	operators.SetChild(rightCollect, rightPartition)

	return newJoin(joinorder.DualPartitionJoin, leftCollect, rightCollect, joinType, clauses)
}
