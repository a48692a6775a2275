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
	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

const (
	joinHint = "Consider joining tables on partition column and have " +
		"equal filter on joining columns."
	filterHint = "Consider using an equality filter on the distributed " +
		"table's partition column."
	localTableHint = "Use CTE's or subqueries to select from local tables and use them in joins"
)

// DeferErrorIfQueryNotSupported checks that the query only uses constructs
// the logical planner can represent. Every check runs; when several fail, the
// one evaluated last decides the message.
func DeferErrorIfQueryNotSupported(q *querytree.Query, lookup metadata.Lookup) *vterrors.DeferredError {
	supported := true
	var message, hint string

	if q.SetOperations != nil {
		supported = false
		message = "could not run distributed query with UNION, INTERSECT, or EXCEPT"
		hint = filterHint
	}

	if q.HasRecursive {
		supported = false
		message = "could not run distributed query with RECURSIVE"
		hint = filterHint
	}

	if len(q.CTEList) > 0 {
		supported = false
		message = "could not run distributed query with common table expressions"
		hint = filterHint
	}

	if q.HasForUpdate {
		supported = false
		message = "could not run distributed query with FOR UPDATE/SHARE commands"
		hint = filterHint
	}

	if len(q.GroupingSets) > 0 {
		supported = false
		message = "could not run distributed query with GROUPING SETS, CUBE, or ROLLUP"
		hint = filterHint
	}

	if querytree.ContainsNode(q, isGroupingFunc) {
		supported = false
		message = "could not run distributed query with GROUPING"
		hint = filterHint
	}

	if hasUnsupportedJoin(q.JoinTree) {
		supported = false
		message = "could not run distributed query with join types other than " +
			"INNER or OUTER JOINS"
		hint = joinHint
	}

	if hasComplexRangeTableType(q) {
		supported = false
		message = "could not run distributed query with complex table expressions"
		hint = filterHint
	}

	// the hint of an earlier failure is kept for these two
	if q.LimitCount != nil && querytree.ExprContains(q.LimitCount, isSubLink) {
		supported = false
		message = "subquery in LIMIT is not supported in multi-shard queries"
	}

	if q.LimitOffset != nil && querytree.ExprContains(q.LimitOffset, isSubLink) {
		supported = false
		message = "subquery in OFFSET is not supported in multi-shard queries"
	}

	props := GetRTEListPropertiesForQuery(q, lookup)
	if props.HasLocalTable() && props.HasDistributedOrReferenceTable() {
		supported = false
		message = "direct joins between distributed and local tables are not supported"
		hint = localTableHint
	}

	if supported {
		return nil
	}
	if !ErrorHintRequired(hint, q, lookup) {
		hint = ""
	}
	return vterrors.NewDeferredError(codes.Unimplemented, message, "", hint)
}

func isGroupingFunc(node querytree.Node) bool {
	_, ok := node.(*querytree.GroupingFunc)
	return ok
}

func isSubLink(node querytree.Node) bool {
	_, ok := node.(*querytree.SubLink)
	return ok
}

// hasUnsupportedJoin reports a join that is neither inner, semi nor one of
// the outer kinds.
func hasUnsupportedJoin(from *querytree.FromExpr) bool {
	if from == nil {
		return false
	}
	for _, join := range querytree.JoinExprs(from) {
		switch join.JoinType {
		case querytree.JoinInner, querytree.JoinLeft, querytree.JoinRight,
			querytree.JoinFull, querytree.JoinSemi:
		default:
			return true
		}
	}
	return false
}

// hasComplexRangeTableType reports a join tree entry that is not a relation,
// sub-query, function, VALUES list or JSON table, or a sub-query that was
// flattened from a UNION ALL.
func hasComplexRangeTableType(q *querytree.Query) bool {
	hasComplex := false
	for _, index := range querytree.RangeTableIndexes(q.JoinTree) {
		if index < 1 || index > len(q.RangeTable) {
			continue
		}
		rte := q.RTFetch(index)
		switch rte.Kind {
		case querytree.RTERelation, querytree.RTESubquery, querytree.RTEFunction, querytree.RTEValues:
		default:
			if !isJSONTableRTE(rte) {
				hasComplex = true
			}
		}
		if rte.Kind == querytree.RTESubquery && rte.Inh {
			hasComplex = true
		}
	}
	return hasComplex
}

func isJSONTableRTE(rte *querytree.RangeTblEntry) bool {
	return rte.Kind == querytree.RTETableFunc && rte.TableFunc != nil && rte.TableFunc.IsJSONTable
}

// ErrorHintRequired reports whether hint is worth showing for q: the query
// only involves reference tables and hash or single shard tables of a single
// colocation group. Other distribution methods suppress the hint.
func ErrorHintRequired(hint string, q *querytree.Query, lookup metadata.Lookup) bool {
	if hint == "" {
		return false
	}
	colocationIDs := map[uint32]bool{}
	for _, relationID := range DistributedRelationIDs(q, lookup) {
		switch {
		case metadata.IsReferenceTable(lookup, relationID):
			continue
		case metadata.IsCitusTableType(lookup, relationID, metadata.Hash, metadata.SingleShard):
			colocationIDs[metadata.ColocationID(lookup, relationID)] = true
		default:
			return false
		}
	}
	return len(colocationIDs) <= 1
}

// DeferErrorIfUnsupportedSubqueryRepartition checks a FROM clause sub-query
// the planner inlines below a placeholder table, and every single sub-query
// nested in it. When several checks fail, the last one decides the detail.
func DeferErrorIfUnsupportedSubqueryRepartition(sub *querytree.Query) *vterrors.DeferredError {
	supported := true
	var detail string

	if !sub.HasAggs {
		supported = false
		detail = "Subqueries without aggregates are not supported yet"
	}

	if len(sub.GroupClause) == 0 {
		supported = false
		detail = "Subqueries without group by clause are not supported yet"
	}

	if len(sub.SortClause) > 0 {
		supported = false
		detail = "Subqueries with order by clause are not supported yet"
	}

	if sub.LimitCount != nil {
		supported = false
		detail = "Subqueries with limit are not supported yet"
	}

	if sub.LimitOffset != nil {
		supported = false
		detail = "Subqueries with offset are not supported yet"
	}

	if sub.HasSubLinks {
		supported = false
		detail = "Subqueries other than from-clause subqueries are unsupported"
	}

	if !supported {
		return vterrors.NewDeferredError(codes.Unimplemented,
			"cannot perform distributed planning on this query", detail, "")
	}

	indexes := querytree.RangeTableIndexes(sub.JoinTree)
	if len(indexes) != 1 {
		return nil
	}
	rte := sub.RTFetch(indexes[0])
	if rte.Kind != querytree.RTESubquery {
		return nil
	}
	return DeferErrorIfUnsupportedSubqueryRepartition(rte.Subquery)
}
