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
	"strings"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/querytree"
)

const (
	relA querytree.RelationID = iota + 100
	relB
	relC
	relRange
	relAppend
	relRef
	relSingle
	relCitusLocal
	relLocal
)

func testLookup() *metadata.Static {
	distributed := func(id querytree.RelationID, name string, method metadata.DistributionMethod, colocation uint32) *metadata.TableMetadata {
		return &metadata.TableMetadata{
			RelationID:             id,
			Name:                   name,
			Method:                 method,
			DistributionColumn:     1,
			DistributionColumnType: querytree.Int4Type,
			ColocationID:           colocation,
		}
	}
	return metadata.NewStatic(
		distributed(relA, "a", metadata.Hash, 1),
		distributed(relB, "b", metadata.Hash, 1),
		distributed(relC, "c", metadata.Hash, 2),
		distributed(relRange, "ra", metadata.Range, 0),
		distributed(relAppend, "ap", metadata.Append, 0),
		&metadata.TableMetadata{RelationID: relRef, Name: "r", Method: metadata.Reference, ColocationID: 3},
		&metadata.TableMetadata{RelationID: relSingle, Name: "ss", Method: metadata.SingleShard, ColocationID: 4},
		&metadata.TableMetadata{RelationID: relCitusLocal, Name: "cl", Method: metadata.CitusLocal},
	)
}

func relation(id querytree.RelationID, name string) *querytree.RangeTblEntry {
	return &querytree.RangeTblEntry{
		Kind:       querytree.RTERelation,
		RelationID: id,
		ERef:       &querytree.Alias{AliasName: name},
	}
}

func col(varno, attno int) *querytree.Var {
	return &querytree.Var{VarNo: varno, VarAttNo: attno, VarType: querytree.Int4Type}
}

func lit(v int64) *querytree.Const {
	return &querytree.Const{ConstType: querytree.Int4Type, Value: v}
}

func op(operator string, l, r querytree.Expr) *querytree.OpExpr {
	return &querytree.OpExpr{Operator: operator, Args: []querytree.Expr{l, r}, ResultType: querytree.BoolType}
}

func eq(l, r querytree.Expr) *querytree.OpExpr {
	return op("=", l, r)
}

func ref(i int) *querytree.RangeTblRef {
	return &querytree.RangeTblRef{RTIndex: i}
}

func target(e querytree.Expr, resno int, name string) *querytree.TargetEntry {
	return &querytree.TargetEntry{Expr: e, ResNo: resno, ResName: name}
}

// selectFrom returns SELECT $1.1 FROM the given relations, each a plain
// FROM list item.
func selectFrom(rtes ...*querytree.RangeTblEntry) *querytree.Query {
	from := &querytree.FromExpr{}
	for i := range rtes {
		from.FromList = append(from.FromList, ref(i+1))
	}
	return &querytree.Query{
		RangeTable: rtes,
		JoinTree:   from,
		TargetList: []*querytree.TargetEntry{target(col(1, 1), 1, "k")},
	}
}

// joinQuery returns
//
//	SELECT l.x FROM l JOIN r ON on WHERE l.x > 5
//
// where x is the second column of the left table.
func joinQuery(left, right *querytree.RangeTblEntry, joinType querytree.JoinType, on querytree.Expr) *querytree.Query {
	return &querytree.Query{
		RangeTable: []*querytree.RangeTblEntry{left, right, {Kind: querytree.RTEJoin}},
		JoinTree: &querytree.FromExpr{
			FromList: []querytree.JoinTreeNode{&querytree.JoinExpr{
				JoinType: joinType,
				Larg:     ref(1),
				Rarg:     ref(2),
				Quals:    on,
				RTIndex:  3,
			}},
			Quals: op(">", col(1, 2), lit(5)),
		},
		TargetList: []*querytree.TargetEntry{target(col(1, 2), 1, "x")},
	}
}

// shape renders the structure of a plan, with the rule of joins and the
// range table id of tables.
func shape(n operators.Node) string {
	s := n.Type().String()
	switch n := n.(type) {
	case *operators.Join:
		s += "[" + n.JoinRuleType.String() + "]"
	case *operators.Table:
		s += fmt.Sprintf("[%d]", n.RangeTableID)
	}
	children := operators.Children(n)
	if len(children) == 0 {
		return s
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		parts = append(parts, shape(c))
	}
	return s + "(" + strings.Join(parts, ", ") + ")"
}
