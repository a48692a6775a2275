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

package querytree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(varno, attno int) *Var {
	return &Var{VarNo: varno, VarAttNo: attno, VarType: Int4Type}
}

func intConst(v int64) *Const {
	return &Const{ConstType: Int4Type, Value: v}
}

func op(operator string, l, r Expr) *OpExpr {
	return &OpExpr{Operator: operator, Args: []Expr{l, r}, ResultType: BoolType}
}

func and(args ...Expr) *BoolExpr {
	return &BoolExpr{BoolOp: AndExpr, Args: args}
}

func or(args ...Expr) *BoolExpr {
	return &BoolExpr{BoolOp: OrExpr, Args: args}
}

func not(arg Expr) *BoolExpr {
	return &BoolExpr{BoolOp: NotExpr, Args: []Expr{arg}}
}

func TestPullVarClause(t *testing.T) {
	a, b, c := col(1, 1), col(2, 1), col(1, 2)
	outer := &Var{VarNo: 1, VarAttNo: 3, LevelsUp: 1}
	expr := and(
		op("=", a, b),
		op(">", &Aggref{AggName: "sum", Args: []Expr{c}}, intConst(3)),
		op("=", outer, &WindowFunc{FuncName: "rank", Args: []Expr{a}}),
		&SubLink{SubLinkType: ExistsSubLink, Subselect: &Query{
			TargetList: []*TargetEntry{{Expr: col(1, 9)}},
		}},
	)

	vars := PullVarClause(expr)
	require.Len(t, vars, 4)
	assert.Same(t, a, vars[0])
	assert.Same(t, b, vars[1])
	assert.Same(t, c, vars[2])
	assert.Same(t, a, vars[3])
}

func TestWalkQueryEntersNestedQueries(t *testing.T) {
	grouping := &GroupingFunc{Args: []Expr{col(1, 1)}}
	inner := &Query{
		RangeTable: []*RangeTblEntry{{Kind: RTERelation, RelationID: 10}},
		JoinTree:   &FromExpr{FromList: []JoinTreeNode{&RangeTblRef{RTIndex: 1}}},
		TargetList: []*TargetEntry{{Expr: grouping}},
	}
	q := &Query{
		RangeTable: []*RangeTblEntry{{Kind: RTESubquery, Subquery: inner}},
		JoinTree:   &FromExpr{FromList: []JoinTreeNode{&RangeTblRef{RTIndex: 1}}},
		TargetList: []*TargetEntry{{Expr: col(1, 1)}},
	}

	isGrouping := func(n Node) bool {
		_, ok := n.(*GroupingFunc)
		return ok
	}
	assert.True(t, ContainsNode(q, isGrouping))
	assert.False(t, ExprContains(q.TargetList[0].Expr, isGrouping))

	sublinkOnly := &Query{
		JoinTree: &FromExpr{Quals: &SubLink{SubLinkType: ExistsSubLink, Subselect: inner}},
	}
	assert.True(t, ContainsNode(sublinkOnly, isGrouping))
	assert.False(t, ExprContains(sublinkOnly.JoinTree.Quals, isGrouping))
}

func TestWalkSkipChildren(t *testing.T) {
	expr := and(op("=", col(1, 1), col(2, 1)), op("=", col(1, 2), intConst(1)))
	var seen []string
	err := Walk(func(node Node) (bool, error) {
		seen = append(seen, String(node))
		_, isOp := node.(*OpExpr)
		return !isOp, nil
	}, expr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"(($1.1 = $2.1) AND ($1.2 = 1))",
		"($1.1 = $2.1)",
		"($1.2 = 1)",
	}, seen)
}

func TestRangeTableIndexes(t *testing.T) {
	tree := &FromExpr{FromList: []JoinTreeNode{
		&JoinExpr{
			JoinType: JoinLeft,
			Larg:     &RangeTblRef{RTIndex: 1},
			Rarg:     &RangeTblRef{RTIndex: 3},
			RTIndex:  4,
			Quals:    op("=", col(1, 1), col(3, 1)),
		},
		&RangeTblRef{RTIndex: 2},
	}}
	assert.Equal(t, []int{1, 3, 2}, RangeTableIndexes(tree))
	require.Len(t, JoinExprs(tree), 1)
	assert.Equal(t, JoinLeft, JoinExprs(tree)[0].JoinType)
	assert.Empty(t, RangeTableIndexes((*FromExpr)(nil)))
}

func TestCloneExprIsDeep(t *testing.T) {
	a := col(1, 1)
	expr := and(op("=", a, col(2, 1)), &NullTest{Arg: a, IsNull: true})
	cloned := CloneExpr(expr)

	assert.True(t, Equals(expr, cloned))
	vars := PullVarClause(cloned)
	require.Len(t, vars, 3)
	for _, v := range vars {
		assert.NotSame(t, a, v)
	}

	vars[0].VarNo = 7
	assert.Equal(t, 1, a.VarNo)
	assert.False(t, Equals(expr, cloned))
}

func TestCloneQuery(t *testing.T) {
	q := &Query{
		RangeTable: []*RangeTblEntry{{
			Kind:       RTERelation,
			RelationID: 10,
			Alias:      &Alias{AliasName: "a"},
			ERef:       &Alias{AliasName: "a", ColNames: []string{"x", "k"}},
		}},
		JoinTree:     &FromExpr{FromList: []JoinTreeNode{&RangeTblRef{RTIndex: 1}}, Quals: op(">", col(1, 1), intConst(5))},
		TargetList:   []*TargetEntry{{Expr: col(1, 1), ResNo: 1, ResName: "x", ResSortGroupRef: 1}},
		SortClause:   []*SortGroupClause{{TLESortGroupRef: 1}},
		LimitCount:   intConst(10),
		CTEList:      []*CommonTableExpr{{Name: "c", Query: &Query{}}},
		RowMarks:     []*RowMarkClause{{RTIndex: 1, Strength: LockForUpdate}},
		HasForUpdate: true,
	}
	cp := CloneQuery(q)
	assert.Equal(t, q, cp)
	assert.NotSame(t, q.RangeTable[0], cp.RangeTable[0])
	assert.NotSame(t, q.JoinTree, cp.JoinTree)
	assert.NotSame(t, q.TargetList[0].Expr, cp.TargetList[0].Expr)

	cp.RangeTable[0].ERef.ColNames[0] = "changed"
	assert.Equal(t, "x", q.RangeTable[0].ERef.ColNames[0])
	assert.Same(t, q.TargetEntryForRef(1), q.TargetList[0])
	assert.Nil(t, q.TargetEntryForRef(2))
}

func TestCloneQueryKeepsSharing(t *testing.T) {
	shared := col(1, 1)
	sub := &Query{TargetList: []*TargetEntry{{Expr: shared, ResNo: 1}}}
	q := &Query{
		RangeTable: []*RangeTblEntry{{Kind: RTESubquery, Subquery: sub}},
		TargetList: []*TargetEntry{
			{Expr: shared, ResNo: 1, ResName: "x"},
			{Expr: shared, ResNo: 2, ResName: "y"},
			{Expr: op("+", shared, intConst(1)), ResNo: 3, ResName: "z"},
		},
	}
	cp := CloneQuery(q)
	first := cp.TargetList[0].Expr
	assert.NotSame(t, shared, first)
	assert.Same(t, first, cp.TargetList[1].Expr)
	assert.Same(t, first, cp.TargetList[2].Expr.(*OpExpr).Args[0])

	// nested query levels get their own copy
	assert.NotSame(t, first, cp.RangeTable[0].Subquery.TargetList[0].Expr)
}

func TestStripImplicitCoercions(t *testing.T) {
	a := col(1, 1)
	assert.Same(t, a, StripImplicitCoercions(&RelabelType{Arg: &RelabelType{Arg: a, Implicit: true}, Implicit: true}))
	explicit := &RelabelType{Arg: a, ResultType: Int8Type}
	assert.Same(t, explicit, StripImplicitCoercions(explicit))
}

func TestJoinTypes(t *testing.T) {
	for _, jt := range []JoinType{JoinLeft, JoinFull, JoinRight, JoinAnti, JoinRightAnti} {
		assert.True(t, jt.IsOuter(), jt.String())
	}
	for _, jt := range []JoinType{JoinInner, JoinSemi, JoinUniqueOuter, JoinUniqueInner} {
		assert.False(t, jt.IsOuter(), jt.String())
	}
	jt, ok := ParseJoinType("right anti")
	require.True(t, ok)
	assert.Equal(t, JoinRightAnti, jt)
	_, ok = ParseJoinType("sideways")
	assert.False(t, ok)
	assert.Equal(t, "values", RTEValues.String())
}

func TestRangeTableRelations(t *testing.T) {
	inSubLink := &Query{RangeTable: []*RangeTblEntry{{Kind: RTERelation, RelationID: 4}}}
	inCTE := &Query{RangeTable: []*RangeTblEntry{{Kind: RTERelation, RelationID: 5}}}
	q := &Query{
		RangeTable: []*RangeTblEntry{
			{Kind: RTERelation, RelationID: 1},
			{Kind: RTESubquery, Subquery: &Query{RangeTable: []*RangeTblEntry{
				{Kind: RTERelation, RelationID: 2},
				{Kind: RTEValues},
			}}},
			{Kind: RTERelation, RelationID: 3},
		},
		JoinTree: &FromExpr{
			FromList: []JoinTreeNode{&RangeTblRef{RTIndex: 1}},
			Quals:    &SubLink{SubLinkType: ExistsSubLink, Subselect: inSubLink},
		},
		CTEList: []*CommonTableExpr{{Name: "c", Query: inCTE}},
	}
	var ids []RelationID
	for _, rte := range RangeTableRelations(q) {
		ids = append(ids, rte.RelationID)
	}
	assert.Equal(t, []RelationID{1, 2, 3, 5, 4}, ids)
	assert.Empty(t, RangeTableRelations(nil))
}
