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

// Visit defines the signature of a function that can be used to visit all
// nodes of an expression or join tree. It returns kontinue=false to skip the
// children of the node it was given. A non-nil error aborts the walk.
type Visit func(node Node) (kontinue bool, err error)

// Walk calls visit on every node in pre-order. It stays inside the current
// query level: sub-selects of SubLinks are not entered. Use WalkQuery to
// cover nested queries as well.
func Walk(visit Visit, nodes ...Node) error {
	for _, node := range nodes {
		if err := walk(visit, node, false); err != nil {
			return err
		}
	}
	return nil
}

// WalkQuery calls visit on every expression and join tree node of the query
// and, recursively, of every query nested in it: sub-selects, sub-queries of
// the range table and common table expressions.
func WalkQuery(visit Visit, q *Query) error {
	if q == nil {
		return nil
	}
	for _, te := range q.TargetList {
		if err := walk(visit, te.Expr, true); err != nil {
			return err
		}
	}
	if q.JoinTree != nil {
		if err := walk(visit, q.JoinTree, true); err != nil {
			return err
		}
	}
	for _, e := range []Expr{q.HavingQual, q.LimitCount, q.LimitOffset} {
		if err := walk(visit, e, true); err != nil {
			return err
		}
	}
	for _, cte := range q.CTEList {
		if err := WalkQuery(visit, cte.Query); err != nil {
			return err
		}
	}
	for _, rte := range q.RangeTable {
		if err := walkRangeTblEntry(visit, rte); err != nil {
			return err
		}
	}
	return nil
}

func walkRangeTblEntry(visit Visit, rte *RangeTblEntry) error {
	switch rte.Kind {
	case RTESubquery:
		return WalkQuery(visit, rte.Subquery)
	case RTEFunction:
		for _, fn := range rte.Functions {
			if err := walk(visit, fn, true); err != nil {
				return err
			}
		}
	case RTEValues:
		for _, row := range rte.ValuesLists {
			for _, e := range row {
				if err := walk(visit, e, true); err != nil {
					return err
				}
			}
		}
	case RTERelation:
		if rte.TableSample != nil {
			for _, e := range rte.TableSample.Args {
				if err := walk(visit, e, true); err != nil {
					return err
				}
			}
			return walk(visit, rte.TableSample.Repeatable, true)
		}
	}
	return nil
}

func walk(visit Visit, node Node, intoQueries bool) error {
	if isNil(node) {
		return nil
	}
	kontinue, err := visit(node)
	if err != nil || !kontinue {
		return err
	}
	walkList := func(exprs []Expr) error {
		for _, e := range exprs {
			if err := walk(visit, e, intoQueries); err != nil {
				return err
			}
		}
		return nil
	}
	switch n := node.(type) {
	case *FromExpr:
		for _, item := range n.FromList {
			if err := walk(visit, item, intoQueries); err != nil {
				return err
			}
		}
		return walk(visit, n.Quals, intoQueries)
	case *JoinExpr:
		if err := walk(visit, n.Larg, intoQueries); err != nil {
			return err
		}
		if err := walk(visit, n.Rarg, intoQueries); err != nil {
			return err
		}
		return walk(visit, n.Quals, intoQueries)
	case *OpExpr:
		return walkList(n.Args)
	case *BoolExpr:
		return walkList(n.Args)
	case *FuncExpr:
		return walkList(n.Args)
	case *Aggref:
		if err := walkList(n.Args); err != nil {
			return err
		}
		return walk(visit, n.AggFilter, intoQueries)
	case *WindowFunc:
		return walkList(n.Args)
	case *GroupingFunc:
		return walkList(n.Args)
	case *NullTest:
		return walk(visit, n.Arg, intoQueries)
	case *RelabelType:
		return walk(visit, n.Arg, intoQueries)
	case *SubLink:
		if err := walk(visit, n.TestExpr, intoQueries); err != nil {
			return err
		}
		if intoQueries {
			return WalkQuery(visit, n.Subselect)
		}
	}
	return nil
}

// isNil catches typed nil pointers stored in a Node interface.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *FromExpr:
		return n == nil
	case *JoinExpr:
		return n == nil
	case *RangeTblRef:
		return n == nil
	case *Var:
		return n == nil
	case *Const:
		return n == nil
	case *OpExpr:
		return n == nil
	case *BoolExpr:
		return n == nil
	case *FuncExpr:
		return n == nil
	case *Aggref:
		return n == nil
	case *WindowFunc:
		return n == nil
	case *SubLink:
		return n == nil
	case *GroupingFunc:
		return n == nil
	case *NullTest:
		return n == nil
	case *RelabelType:
		return n == nil
	}
	return false
}

// ContainsNode reports whether any node for which match returns true
// appears in the query, nested queries included.
func ContainsNode(q *Query, match func(Node) bool) bool {
	found := false
	_ = WalkQuery(func(node Node) (bool, error) {
		if match(node) {
			found = true
			return false, errStop
		}
		return true, nil
	}, q)
	return found
}

// ExprContains reports whether any node of the expression, sub-selects
// excluded, satisfies match.
func ExprContains(e Expr, match func(Node) bool) bool {
	found := false
	_ = Walk(func(node Node) (bool, error) {
		if match(node) {
			found = true
			return false, errStop
		}
		return true, nil
	}, e)
	return found
}

type stopWalk struct{}

func (stopWalk) Error() string { return "stop" }

var errStop error = stopWalk{}

// PullVarClause returns the column references of the current query level
// found in the expression, in order of appearance. Aggregate and window
// function arguments are searched; sub-selects are not.
func PullVarClause(node Node) []*Var {
	var vars []*Var
	_ = Walk(func(n Node) (bool, error) {
		if v, ok := n.(*Var); ok && v.LevelsUp == 0 {
			vars = append(vars, v)
		}
		return true, nil
	}, node)
	return vars
}

// PullVarClauseFromTargetList is PullVarClause over every target entry.
func PullVarClauseFromTargetList(targets []*TargetEntry) []*Var {
	var vars []*Var
	for _, te := range targets {
		vars = append(vars, PullVarClause(te.Expr)...)
	}
	return vars
}

// RangeTableIndexes returns the range table positions of every RangeTblRef in
// the join tree, in tree order. Entries left in the range table by flattening
// but no longer referenced from the join tree are not reported.
func RangeTableIndexes(node JoinTreeNode) []int {
	var indexes []int
	_ = Walk(func(n Node) (bool, error) {
		switch n := n.(type) {
		case *RangeTblRef:
			indexes = append(indexes, n.RTIndex)
		case Expr:
			return false, nil
		}
		return true, nil
	}, node)
	return indexes
}

// JoinExprs returns every JoinExpr of the join tree in pre-order.
func JoinExprs(node JoinTreeNode) []*JoinExpr {
	var joins []*JoinExpr
	_ = Walk(func(n Node) (bool, error) {
		switch n := n.(type) {
		case *JoinExpr:
			joins = append(joins, n)
		case Expr:
			return false, nil
		}
		return true, nil
	}, node)
	return joins
}

// RangeTableRelations returns the relation entries of the query and of every
// query nested in it: range table sub-queries, common table expressions and
// sub-selects. Entries are returned depth first, in range table order.
func RangeTableRelations(q *Query) []*RangeTblEntry {
	var relations []*RangeTblEntry
	var visitQuery func(q *Query)
	visitQuery = func(q *Query) {
		if q == nil {
			return
		}
		for _, rte := range q.RangeTable {
			switch rte.Kind {
			case RTERelation:
				relations = append(relations, rte)
			case RTESubquery:
				visitQuery(rte.Subquery)
			}
		}
		for _, cte := range q.CTEList {
			visitQuery(cte.Query)
		}
		_ = Walk(func(node Node) (bool, error) {
			if sl, ok := node.(*SubLink); ok {
				visitQuery(sl.Subselect)
			}
			return true, nil
		}, queryLevelNodes(q)...)
	}
	visitQuery(q)
	return relations
}

// queryLevelNodes returns the expression and join tree roots of the query,
// without descending into nested queries.
func queryLevelNodes(q *Query) []Node {
	var nodes []Node
	for _, te := range q.TargetList {
		nodes = append(nodes, te.Expr)
	}
	if q.JoinTree != nil {
		nodes = append(nodes, q.JoinTree)
	}
	return append(nodes, q.HavingQual, q.LimitCount, q.LimitOffset)
}
