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
	"reflect"
)

// cloner deep copies query trees. An expression referenced from several
// places is copied once, so the copy keeps the sharing of the source.
type cloner struct {
	seen map[Expr]Expr
}

func newCloner() *cloner {
	return &cloner{seen: map[Expr]Expr{}}
}

// CloneExpr returns a deep copy of the expression. Sub-selects are copied as
// well, so the result shares no pointers with the input.
func CloneExpr(in Expr) Expr {
	return newCloner().expr(in)
}

// CloneExprs deep copies a list of expressions.
func CloneExprs(in []Expr) []Expr {
	return newCloner().exprs(in)
}

// CloneJoinTree returns a deep copy of a join tree node, including the
// qualifiers it carries.
func CloneJoinTree(in JoinTreeNode) JoinTreeNode {
	return newCloner().joinTree(in)
}

// CloneFromExpr is CloneJoinTree for the top level FromExpr.
func CloneFromExpr(in *FromExpr) *FromExpr {
	return newCloner().fromExpr(in)
}

// CloneQuery deep copies a query, including the queries nested in it.
func CloneQuery(in *Query) *Query {
	return newCloner().query(in)
}

// CloneTargetList deep copies a target list.
func CloneTargetList(in []*TargetEntry) []*TargetEntry {
	return newCloner().targetList(in)
}

func (c *cloner) expr(in Expr) Expr {
	if in == nil {
		return nil
	}
	if out, ok := c.seen[in]; ok {
		return out
	}
	out := c.copyExpr(in)
	c.seen[in] = out
	return out
}

func (c *cloner) copyExpr(in Expr) Expr {
	switch in := in.(type) {
	case *Var:
		if in == nil {
			return nil
		}
		out := *in
		return &out
	case *Const:
		if in == nil {
			return nil
		}
		out := *in
		return &out
	case *OpExpr:
		if in == nil {
			return nil
		}
		return &OpExpr{Operator: in.Operator, Args: c.exprs(in.Args), ResultType: in.ResultType}
	case *BoolExpr:
		if in == nil {
			return nil
		}
		return &BoolExpr{BoolOp: in.BoolOp, Args: c.exprs(in.Args)}
	case *FuncExpr:
		if in == nil {
			return nil
		}
		return c.funcExpr(in)
	case *Aggref:
		if in == nil {
			return nil
		}
		return &Aggref{AggName: in.AggName, Args: c.exprs(in.Args), AggFilter: c.expr(in.AggFilter)}
	case *WindowFunc:
		if in == nil {
			return nil
		}
		return &WindowFunc{FuncName: in.FuncName, Args: c.exprs(in.Args), WinRef: in.WinRef}
	case *SubLink:
		if in == nil {
			return nil
		}
		return &SubLink{
			SubLinkType: in.SubLinkType,
			TestExpr:    c.expr(in.TestExpr),
			Operator:    in.Operator,
			Subselect:   c.query(in.Subselect),
		}
	case *GroupingFunc:
		if in == nil {
			return nil
		}
		return &GroupingFunc{Args: c.exprs(in.Args)}
	case *NullTest:
		if in == nil {
			return nil
		}
		return &NullTest{Arg: c.expr(in.Arg), IsNull: in.IsNull}
	case *RelabelType:
		if in == nil {
			return nil
		}
		return &RelabelType{Arg: c.expr(in.Arg), ResultType: in.ResultType, Implicit: in.Implicit}
	}
	panic("querytree: unknown expression type " + reflect.TypeOf(in).String())
}

func (c *cloner) exprs(in []Expr) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = c.expr(e)
	}
	return out
}

func (c *cloner) funcExpr(in *FuncExpr) *FuncExpr {
	if in == nil {
		return nil
	}
	if out, ok := c.seen[in]; ok {
		return out.(*FuncExpr)
	}
	out := &FuncExpr{FuncName: in.FuncName, Args: c.exprs(in.Args)}
	c.seen[in] = out
	return out
}

func (c *cloner) joinTree(in JoinTreeNode) JoinTreeNode {
	switch in := in.(type) {
	case nil:
		return nil
	case *FromExpr:
		if in == nil {
			return nil
		}
		return c.fromExpr(in)
	case *JoinExpr:
		if in == nil {
			return nil
		}
		return &JoinExpr{
			JoinType: in.JoinType,
			Larg:     c.joinTree(in.Larg),
			Rarg:     c.joinTree(in.Rarg),
			Quals:    c.expr(in.Quals),
			RTIndex:  in.RTIndex,
		}
	case *RangeTblRef:
		if in == nil {
			return nil
		}
		return &RangeTblRef{RTIndex: in.RTIndex}
	}
	panic("querytree: unknown join tree node type " + reflect.TypeOf(in).String())
}

func (c *cloner) fromExpr(in *FromExpr) *FromExpr {
	if in == nil {
		return nil
	}
	out := &FromExpr{Quals: c.expr(in.Quals)}
	if in.FromList != nil {
		out.FromList = make([]JoinTreeNode, len(in.FromList))
		for i, item := range in.FromList {
			out.FromList[i] = c.joinTree(item)
		}
	}
	return out
}

func (c *cloner) query(in *Query) *Query {
	if in == nil {
		return nil
	}
	// sharing is kept within one query level only
	c = newCloner()
	out := *in
	if in.RangeTable != nil {
		out.RangeTable = make([]*RangeTblEntry, len(in.RangeTable))
		for i, rte := range in.RangeTable {
			out.RangeTable[i] = c.rangeTblEntry(rte)
		}
	}
	out.JoinTree = c.fromExpr(in.JoinTree)
	out.TargetList = c.targetList(in.TargetList)
	out.GroupClause = cloneSortGroupClauses(in.GroupClause)
	out.SortClause = cloneSortGroupClauses(in.SortClause)
	out.DistinctClause = cloneSortGroupClauses(in.DistinctClause)
	if in.GroupingSets != nil {
		out.GroupingSets = make([]*GroupingSet, len(in.GroupingSets))
		for i, gs := range in.GroupingSets {
			out.GroupingSets[i] = &GroupingSet{Kind: gs.Kind, Content: append([]int(nil), gs.Content...)}
		}
	}
	out.HavingQual = c.expr(in.HavingQual)
	out.LimitCount = c.expr(in.LimitCount)
	out.LimitOffset = c.expr(in.LimitOffset)
	if in.WindowClause != nil {
		out.WindowClause = make([]*WindowClause, len(in.WindowClause))
		for i, wc := range in.WindowClause {
			out.WindowClause[i] = &WindowClause{
				Name:            wc.Name,
				WinRef:          wc.WinRef,
				PartitionClause: cloneSortGroupClauses(wc.PartitionClause),
				OrderClause:     cloneSortGroupClauses(wc.OrderClause),
			}
		}
	}
	if in.SetOperations != nil {
		so := *in.SetOperations
		out.SetOperations = &so
	}
	if in.CTEList != nil {
		out.CTEList = make([]*CommonTableExpr, len(in.CTEList))
		for i, cte := range in.CTEList {
			out.CTEList[i] = &CommonTableExpr{Name: cte.Name, Query: c.query(cte.Query), Recursive: cte.Recursive}
		}
	}
	if in.RowMarks != nil {
		out.RowMarks = make([]*RowMarkClause, len(in.RowMarks))
		for i, rm := range in.RowMarks {
			mark := *rm
			out.RowMarks[i] = &mark
		}
	}
	return &out
}

func (c *cloner) targetList(in []*TargetEntry) []*TargetEntry {
	if in == nil {
		return nil
	}
	out := make([]*TargetEntry, len(in))
	for i, te := range in {
		cp := *te
		cp.Expr = c.expr(te.Expr)
		out[i] = &cp
	}
	return out
}

func cloneSortGroupClauses(in []*SortGroupClause) []*SortGroupClause {
	if in == nil {
		return nil
	}
	out := make([]*SortGroupClause, len(in))
	for i, sgc := range in {
		cp := *sgc
		out[i] = &cp
	}
	return out
}

func cloneAlias(in *Alias) *Alias {
	if in == nil {
		return nil
	}
	return &Alias{AliasName: in.AliasName, ColNames: append([]string(nil), in.ColNames...)}
}

func (c *cloner) rangeTblEntry(in *RangeTblEntry) *RangeTblEntry {
	if in == nil {
		return nil
	}
	out := *in
	out.Alias = cloneAlias(in.Alias)
	out.ERef = cloneAlias(in.ERef)
	if in.TableSample != nil {
		out.TableSample = &TableSampleClause{
			Method:     in.TableSample.Method,
			Args:       c.exprs(in.TableSample.Args),
			Repeatable: c.expr(in.TableSample.Repeatable),
		}
	}
	out.Subquery = c.query(in.Subquery)
	if in.Functions != nil {
		out.Functions = make([]*FuncExpr, len(in.Functions))
		for i, fn := range in.Functions {
			out.Functions[i] = c.funcExpr(fn)
		}
	}
	if in.TableFunc != nil {
		tf := *in.TableFunc
		out.TableFunc = &tf
	}
	if in.ValuesLists != nil {
		out.ValuesLists = make([][]Expr, len(in.ValuesLists))
		for i, row := range in.ValuesLists {
			out.ValuesLists[i] = c.exprs(row)
		}
	}
	return &out
}

// Equals reports whether two expressions are structurally identical.
func Equals(a, b Expr) bool {
	return reflect.DeepEqual(a, b)
}

// StripImplicitCoercions removes implicit RelabelType wrappers from the top of
// the expression.
func StripImplicitCoercions(e Expr) Expr {
	for {
		rt, ok := e.(*RelabelType)
		if !ok || rt == nil || !rt.Implicit {
			return e
		}
		e = rt.Arg
	}
}
