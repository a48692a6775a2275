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

package joinorder

import (
	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/log"
	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/multiplan/qualifiers"
	"github.com/warmchang/citus/go/vt/multiplan/tableset"
	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// RedistributedByHash is the PartitionMethod of a join result whose rows
// were hashed on the join column by a dual partition join.
const RedistributedByHash = metadata.DistributionMethod(-1)

// Sequential joins the tables in the order they are given and picks the
// cheapest applicable rule for every step. It does no cost based search.
type Sequential struct {
	Lookup metadata.Lookup
	// EnableRepartitionJoins allows single and dual partition joins.
	EnableRepartitionJoins bool
	LogJoinOrder           bool
}

var (
	_ Solver           = (*Sequential)(nil)
	_ OuterJoinOrderer = (*Sequential)(nil)
)

// OrdersOuterJoins implements OuterJoinOrderer. Every step Sequential emits is
// an inner join.
func (s *Sequential) OrdersOuterJoins() bool {
	return false
}

type ruleEvaluator func(s *Sequential, current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode

// ruleEvaluators follows the order of the JoinRuleType values. Single hash and
// single range partition joins share one evaluator.
var ruleEvaluators = [...]ruleEvaluator{
	(*Sequential).referenceJoin,
	(*Sequential).localJoin,
	(*Sequential).singlePartitionJoin,
	(*Sequential).dualPartitionJoin,
	(*Sequential).cartesianProductReferenceJoin,
	(*Sequential).cartesianProduct,
}

// JoinOrder implements Solver.
func (s *Sequential) JoinOrder(tables []*TableEntry, joinClauses []querytree.Expr) ([]*JoinOrderNode, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	current := s.firstNode(tables[0])
	order := []*JoinOrderNode{current}
	joined := tableset.Single(tables[0].RangeTableID)
	for _, candidate := range tables[1:] {
		applicable := qualifiers.ApplicableJoinClauses(joined, candidate.RangeTableID, joinClauses)
		next := s.evaluateJoinRules(current, candidate, applicable)
		if next.JoinRuleType.IsRepartition() && !s.EnableRepartitionJoins {
			return nil, vterrors.NewDeferredError(codes.Unimplemented,
				"the query contains a join that requires repartitioning", "",
				"Set --enable-repartition-joins to enable repartitioning").Err()
		}
		order = append(order, next)
		joined = joined.With(candidate.RangeTableID)
		current = next
	}
	if s.LogJoinOrder {
		log.Infof("join order: %s", FormatJoinOrder(order))
	}
	return order, nil
}

func (s *Sequential) evaluateJoinRules(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	for _, evaluate := range ruleEvaluators {
		if next := evaluate(s, current, candidate, clauses); next != nil {
			return next
		}
	}
	// cartesianProduct always applies
	panic(vterrors.VT13001("no join rule applies"))
}

func (s *Sequential) firstNode(table *TableEntry) *JoinOrderNode {
	var columns []*querytree.Var
	if column := s.partitionColumn(table); column != nil {
		columns = []*querytree.Var{column}
	}
	return &JoinOrderNode{
		TableEntry:       table,
		JoinRuleType:     JoinRuleInvalid,
		JoinType:         querytree.JoinInner,
		PartitionColumns: columns,
		PartitionMethod:  s.partitionMethod(table),
		AnchorTable:      table,
	}
}

func (s *Sequential) partitionColumn(table *TableEntry) *querytree.Var {
	return metadata.PartitionColumn(s.Lookup, table.RelationID, table.RangeTableID)
}

// partitionMethod returns 0 for tables the cluster does not manage.
func (s *Sequential) partitionMethod(table *TableEntry) metadata.DistributionMethod {
	if md, ok := s.Lookup.TableMetadata(table.RelationID); ok {
		return md.Method
	}
	return 0
}

func (s *Sequential) isReferenceTable(table *TableEntry) bool {
	return table != nil && metadata.IsReferenceTable(s.Lookup, table.RelationID)
}

// coPartitioned reports whether the shards of both tables line up one to one.
func (s *Sequential) coPartitioned(a, b *TableEntry) bool {
	first, ok := s.Lookup.TableMetadata(a.RelationID)
	if !ok {
		return false
	}
	second, ok := s.Lookup.TableMetadata(b.RelationID)
	if !ok {
		return false
	}
	return first.ColocationID != 0 && first.ColocationID == second.ColocationID
}

func newJoinOrderNode(table *TableEntry, rule JoinRuleType, columns []*querytree.Var, method metadata.DistributionMethod, anchor *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	return &JoinOrderNode{
		TableEntry:       table,
		JoinRuleType:     rule,
		JoinType:         querytree.JoinInner,
		PartitionColumns: columns,
		PartitionMethod:  method,
		JoinClauses:      clauses,
		AnchorTable:      anchor,
	}
}

// referenceJoin applies when there is a join clause and the last joined table
// or the candidate is replicated.
func (s *Sequential) referenceJoin(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	if len(clauses) == 0 {
		return nil
	}
	if !s.isReferenceTable(current.TableEntry) && !s.isReferenceTable(candidate) {
		return nil
	}
	return newJoinOrderNode(candidate, ReferenceJoin, current.PartitionColumns, current.PartitionMethod, current.AnchorTable, clauses)
}

func (s *Sequential) localJoin(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	if current.AnchorTable == nil {
		return nil
	}
	candidateMethod := s.partitionMethod(candidate)
	if current.PartitionMethod != candidateMethod {
		return nil
	}
	candidateColumn := s.partitionColumn(candidate)
	if !qualifiers.JoinOnColumns(current.PartitionColumns, candidateColumn, clauses) {
		return nil
	}
	if !s.coPartitioned(current.AnchorTable, candidate) {
		return nil
	}
	columns := append(append([]*querytree.Var(nil), current.PartitionColumns...), candidateColumn)
	return newJoinOrderNode(candidate, LocalPartitionJoin, columns, current.PartitionMethod, current.AnchorTable, clauses)
}

// singlePartitionJoin first tries to repartition the candidate to match the
// current distribution, then the current result to match the candidate's.
func (s *Sequential) singlePartitionJoin(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	// the alignment was lost by an earlier repartition or cross product
	if current.JoinRuleType == DualPartitionJoin || current.JoinRuleType == CartesianProduct {
		return nil
	}
	candidateMethod := s.partitionMethod(candidate)

	if clause, _ := qualifiers.SinglePartitionJoinClause(current.PartitionColumns, clauses); clause != nil {
		switch current.PartitionMethod {
		case metadata.Hash:
			return newJoinOrderNode(candidate, SingleHashPartitionJoin, current.PartitionColumns, current.PartitionMethod, current.AnchorTable, clauses)
		case metadata.Range, metadata.Append:
			return newJoinOrderNode(candidate, SingleRangePartitionJoin, current.PartitionColumns, current.PartitionMethod, current.AnchorTable, clauses)
		}
	}

	candidateColumn := s.partitionColumn(candidate)
	if candidateColumn == nil {
		return nil
	}
	candidateColumns := []*querytree.Var{candidateColumn}
	if clause, _ := qualifiers.SinglePartitionJoinClause(candidateColumns, clauses); clause != nil {
		switch candidateMethod {
		case metadata.Hash:
			return newJoinOrderNode(candidate, SingleHashPartitionJoin, candidateColumns, candidateMethod, candidate, clauses)
		case metadata.Range, metadata.Append:
			return newJoinOrderNode(candidate, SingleRangePartitionJoin, candidateColumns, candidateMethod, candidate, clauses)
		}
	}
	return nil
}

// dualPartitionJoin loses both the partition columns and the anchor, since
// both sides are rehashed on the join column.
func (s *Sequential) dualPartitionJoin(_ *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	if qualifiers.DualPartitionJoinClause(clauses) == nil {
		return nil
	}
	return newJoinOrderNode(candidate, DualPartitionJoin, nil, RedistributedByHash, nil, clauses)
}

func (s *Sequential) cartesianProductReferenceJoin(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	if !s.isReferenceTable(current.TableEntry) && !s.isReferenceTable(candidate) {
		return nil
	}
	return newJoinOrderNode(candidate, CartesianProductReferenceJoin, current.PartitionColumns, current.PartitionMethod, current.AnchorTable, clauses)
}

func (s *Sequential) cartesianProduct(current *JoinOrderNode, candidate *TableEntry, clauses []querytree.Expr) *JoinOrderNode {
	return newJoinOrderNode(candidate, CartesianProduct, current.PartitionColumns, current.PartitionMethod, nil, clauses)
}
