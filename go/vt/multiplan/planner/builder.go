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

// Package planner builds the distributed logical plan of a query: a tree of
// relational operators with Collect and Partition nodes marking where rows
// move between nodes of the cluster.
package planner

import (
	"fmt"

	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/log"
	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/multiplan/joinorder"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/multiplan/qualifiers"
	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// Builder builds logical plans. It holds no per query state and can be
// shared, provided Lookup and Solver can.
type Builder struct {
	Lookup metadata.Lookup
	Solver joinorder.Solver
	// LogPlanTree logs every plan built.
	LogPlanTree bool
}

// NewBuilder returns a Builder reading metadata from lookup and join orders
// from solver.
func NewBuilder(lookup metadata.Lookup, solver joinorder.Solver) *Builder {
	return &Builder{Lookup: lookup, Solver: solver}
}

// BuildPlan returns the logical plan of q. Unsupported queries return the
// *vterrors.DeferredError describing why; errors of the solver are returned
// as they are. q is not modified.
func (b *Builder) BuildPlan(q *querytree.Query) (*operators.Root, error) {
	q = querytree.CloneQuery(q)
	top, err := b.multiNodeTree(q)
	if err != nil {
		return nil, err
	}
	root := &operators.Root{}
	operators.SetChild(root, top)
	plansBuilt.Add(1)
	if b.LogPlanTree {
		log.Infof("logical plan:\n%s", operators.ToTree(root))
	}
	return root, nil
}

func (b *Builder) raise(derr *vterrors.DeferredError) error {
	deferredErrors.Add(derr.Message, 1)
	log.V(1).Infof("query not supported: %v", derr)
	return derr.Err()
}

// multiNodeTree builds the plan of one query level, up to and including its
// ExtendedOp node.
func (b *Builder) multiNodeTree(q *querytree.Query) (operators.Node, error) {
	if derr := DeferErrorIfQueryNotSupported(q, b.Lookup); derr != nil {
		return nil, b.raise(derr)
	}

	whereClauseList := qualifiers.WhereClauseList(q.JoinTree)
	if derr := qualifiers.DeferErrorIfUnsupportedClause(whereClauseList); derr != nil {
		return nil, b.raise(derr)
	}

	var top operators.Node
	subqueries := SubqueryEntryList(q)
	switch len(subqueries) {
	case 0:
		joinTree, err := b.multiJoinTree(q, whereClauseList)
		if err != nil {
			return nil, err
		}
		top = joinTree
	case 1:
		subqueryNode, err := b.subqueryNode(q, subqueries[0], whereClauseList)
		if err != nil {
			return nil, err
		}
		top = subqueryNode
	default:
		panic(vterrors.VT13001(fmt.Sprintf("%d sub-queries in the join tree", len(subqueries))))
	}

	if sel := MultiSelectNode(whereClauseList); sel != nil {
		operators.SetChild(sel, top)
		top = sel
	}

	project := MultiProjectNode(q.TargetList)
	operators.SetChild(project, top)
	top = project

	extendedOp := MultiExtendedOpNode(q, b.Lookup)
	operators.SetChild(extendedOp, top)
	return extendedOp, nil
}

// subqueryNode plans a FROM clause sub-query below a placeholder table. The
// outer query then reads a single range table entry, so its columns are
// renumbered to point at it.
func (b *Builder) subqueryNode(q *querytree.Query, rte *querytree.RangeTblEntry, whereClauseList []querytree.Expr) (operators.Node, error) {
	sub := rte.Subquery
	if derr := DeferErrorIfUnsupportedSubqueryRepartition(sub); derr != nil {
		return nil, b.raise(derr)
	}

	var columns []*querytree.Var
	for _, clause := range whereClauseList {
		columns = append(columns, querytree.PullVarClause(clause)...)
	}
	columns = append(columns, querytree.PullVarClauseFromTargetList(q.TargetList)...)
	for _, column := range columns {
		column.VarNo = 1
	}

	subPlan, err := b.multiNodeTree(sub)
	if err != nil {
		return nil, err
	}
	placeholder := &operators.Table{
		RelationID:   operators.SubqueryRelationID,
		RangeTableID: operators.SubqueryRangeTableID,
		Subquery:     sub,
	}
	operators.SetChild(placeholder, subPlan)
	collect := &operators.Collect{}
	operators.SetChild(collect, placeholder)
	return collect, nil
}

// multiJoinTree builds one Collect over Table per relation of the join tree
// and joins them left deep, in the order the solver picks.
func (b *Builder) multiJoinTree(q *querytree.Query, whereClauseList []querytree.Expr) (operators.Node, error) {
	joinClauseList := qualifiers.JoinClauseList(whereClauseList)
	tableEntries := UsedTableEntryList(q)
	if len(tableEntries) == 0 {
		return nil, vterrors.VT12001("query without a relation in its join tree")
	}
	collects := make(map[int]*operators.Collect, len(tableEntries))
	for _, table := range multiTableNodeList(tableEntries, q, b.Lookup) {
		collect := &operators.Collect{}
		operators.SetChild(collect, table)
		collects[table.RangeTableID] = collect
	}

	if hasOuterJoin(q.JoinTree) && !ordersOuterJoins(b.Solver) {
		return nil, b.raise(vterrors.NewDeferredError(codes.Unimplemented,
			"could not run distributed query with outer joins",
			"the join order planner only orders inner joins", ""))
	}

	order, err := b.Solver.JoinOrder(tableEntries, joinClauseList)
	if err != nil {
		return nil, err
	}

	var top operators.Node
	for i, step := range order {
		collect, ok := collects[step.TableEntry.RangeTableID]
		if !ok {
			panic(vterrors.VT13001(fmt.Sprintf("join order names unknown table %s", step.TableEntry)))
		}
		if i == 0 {
			top = collect
			continue
		}
		top = applyJoinRule(top, collect, step.JoinRuleType, step.PartitionColumns, step.JoinType, step.JoinClauses)
	}
	if top == nil {
		panic(vterrors.VT13001("empty join order"))
	}
	return top, nil
}

func hasOuterJoin(from *querytree.FromExpr) bool {
	if from == nil {
		return false
	}
	for _, join := range querytree.JoinExprs(from) {
		if join.JoinType.IsOuter() {
			return true
		}
	}
	return false
}

func ordersOuterJoins(solver joinorder.Solver) bool {
	orderer, ok := solver.(joinorder.OuterJoinOrderer)
	return ok && orderer.OrdersOuterJoins()
}

func multiTableNodeList(tableEntries []*joinorder.TableEntry, q *querytree.Query, lookup metadata.Lookup) []*operators.Table {
	tables := make([]*operators.Table, 0, len(tableEntries))
	for _, entry := range tableEntries {
		rte := q.RTFetch(entry.RangeTableID)
		tables = append(tables, &operators.Table{
			RelationID:        entry.RelationID,
			RangeTableID:      entry.RangeTableID,
			PartitionColumn:   metadata.PartitionColumn(lookup, entry.RelationID, entry.RangeTableID),
			Alias:             rte.Alias,
			ReferenceNames:    rte.ERef,
			IncludePartitions: rte.Inh,
			TableSample:       rte.TableSample,
		})
	}
	return tables
}

// UsedTableEntryList returns the relations referenced from the join tree of
// q. Range table entries orphaned by query flattening are skipped.
func UsedTableEntryList(q *querytree.Query) []*joinorder.TableEntry {
	var entries []*joinorder.TableEntry
	for _, index := range querytree.RangeTableIndexes(q.JoinTree) {
		rte := q.RTFetch(index)
		if rte.Kind == querytree.RTERelation {
			entries = append(entries, &joinorder.TableEntry{RelationID: rte.RelationID, RangeTableID: index})
		}
	}
	return entries
}

// SubqueryEntryList returns the sub-query entries referenced from the join
// tree of q.
func SubqueryEntryList(q *querytree.Query) []*querytree.RangeTblEntry {
	var entries []*querytree.RangeTblEntry
	for _, index := range querytree.RangeTableIndexes(q.JoinTree) {
		if rte := q.RTFetch(index); rte.Kind == querytree.RTESubquery {
			entries = append(entries, rte)
		}
	}
	return entries
}
