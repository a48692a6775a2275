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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmchang/citus/go/vt/querytree"
)

func TestMultiSelectNode(t *testing.T) {
	assert.Nil(t, MultiSelectNode(nil))
	assert.Nil(t, MultiSelectNode([]querytree.Expr{eq(col(1, 1), col(2, 1))}))

	sel := MultiSelectNode([]querytree.Expr{
		op(">", col(1, 2), lit(5)),
		eq(col(1, 1), col(2, 1)),
		eq(col(2, 2), lit(3)),
	})
	require.NotNil(t, sel)
	assert.Equal(t, []string{"($1.2 > 5)", "($2.2 = 3)"}, querytree.Strings(sel.SelectClauses))
}

func TestMultiProjectNode(t *testing.T) {
	shared := col(1, 1)
	targets := []*querytree.TargetEntry{
		target(shared, 1, "k"),
		target(op("+", shared, col(1, 1)), 2, "k2"),
		target(&querytree.Aggref{AggName: "sum", Args: []querytree.Expr{col(2, 3)}}, 3, "s"),
	}
	project := MultiProjectNode(targets)
	require.Len(t, project.Columns, 3)
	assert.Same(t, shared, project.Columns[0])
	assert.NotSame(t, shared, project.Columns[1])
	assert.Equal(t, "$1.1", querytree.String(project.Columns[1]))
	assert.Equal(t, "$2.3", querytree.String(project.Columns[2]))

	assert.Empty(t, MultiProjectNode([]*querytree.TargetEntry{target(lit(1), 1, "one")}).Columns)
}

// windowQuery is SELECT k, x, rank() OVER (PARTITION BY ...) FROM a, with
// k and x available as sort group references 1 and 2.
func windowQuery(partitionRefs ...int) *querytree.Query {
	q := selectFrom(relation(relA, "a"))
	q.TargetList = []*querytree.TargetEntry{
		{Expr: col(1, 1), ResNo: 1, ResName: "k", ResSortGroupRef: 1},
		{Expr: col(1, 2), ResNo: 2, ResName: "x", ResSortGroupRef: 2},
		target(&querytree.WindowFunc{FuncName: "rank", WinRef: 1}, 3, "rank"),
	}
	wc := &querytree.WindowClause{WinRef: 1}
	for _, ref := range partitionRefs {
		wc.PartitionClause = append(wc.PartitionClause, &querytree.SortGroupClause{TLESortGroupRef: ref})
	}
	q.WindowClause = []*querytree.WindowClause{wc}
	q.HasWindowFuncs = true
	return q
}

func TestSafeToPushdownWindowFunction(t *testing.T) {
	lookup := testLookup()
	testcases := []struct {
		name   string
		query  *querytree.Query
		safe   bool
		detail string
	}{{
		name:  "partitioned on the distribution column",
		query: windowQuery(1),
		safe:  true,
	}, {
		name:  "distribution column among others",
		query: windowQuery(2, 1),
		safe:  true,
	}, {
		name:   "no partition clause",
		query:  windowQuery(),
		detail: "Window functions without PARTITION BY on distribution column is currently unsupported",
	}, {
		name:   "partitioned on another column",
		query:  windowQuery(2),
		detail: "Window functions with PARTITION BY list missing distribution column is currently unsupported",
	}, {
		name: "one window without partition clause",
		query: func() *querytree.Query {
			q := windowQuery(2)
			q.WindowClause = append(q.WindowClause, &querytree.WindowClause{WinRef: 2})
			return q
		}(),
		detail: "Window functions without PARTITION BY on distribution column is currently unsupported",
	}, {
		name: "reference table",
		query: func() *querytree.Query {
			q := windowQuery(2)
			q.RangeTable[0] = relation(relRef, "r")
			return q
		}(),
		safe: true,
	}}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			safe, detail := SafeToPushdownWindowFunction(tc.query, lookup)
			assert.Equal(t, tc.safe, safe)
			assert.Equal(t, tc.detail, detail)
		})
	}
}

func TestMultiExtendedOpNode(t *testing.T) {
	lookup := testLookup()

	q := selectFrom(relation(relA, "a"))
	q.GroupClause = []*querytree.SortGroupClause{{TLESortGroupRef: 1}}
	q.SortClause = []*querytree.SortGroupClause{{TLESortGroupRef: 1, Descending: true}}
	q.LimitCount = lit(10)
	q.LimitOffset = lit(5)
	q.LimitOption = querytree.LimitOptionWithTies
	q.HavingQual = op(">", &querytree.Aggref{AggName: "count"}, lit(1))
	q.DistinctClause = []*querytree.SortGroupClause{{TLESortGroupRef: 1}}
	q.HasDistinctOn = true

	extendedOp := MultiExtendedOpNode(q, lookup)
	assert.Same(t, q.TargetList[0], extendedOp.TargetList[0])
	assert.Equal(t, q.GroupClause, extendedOp.GroupClause)
	assert.Equal(t, q.SortClause, extendedOp.SortClause)
	assert.Equal(t, "10", querytree.String(extendedOp.LimitCount))
	assert.Equal(t, "5", querytree.String(extendedOp.LimitOffset))
	assert.Equal(t, querytree.LimitOptionWithTies, extendedOp.LimitOption)
	assert.Equal(t, q.HavingQual, extendedOp.HavingQual)
	assert.Equal(t, q.DistinctClause, extendedOp.DistinctClause)
	assert.True(t, extendedOp.HasDistinctOn)
	assert.False(t, extendedOp.HasWindowFuncs)
	assert.True(t, extendedOp.OnlyPushableWindowFunctions)

	extendedOp = MultiExtendedOpNode(windowQuery(1), lookup)
	assert.True(t, extendedOp.HasWindowFuncs)
	assert.True(t, extendedOp.OnlyPushableWindowFunctions)
	require.Len(t, extendedOp.WindowClause, 1)

	extendedOp = MultiExtendedOpNode(windowQuery(2), lookup)
	assert.True(t, extendedOp.HasWindowFuncs)
	assert.False(t, extendedOp.OnlyPushableWindowFunctions)
}
