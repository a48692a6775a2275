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
	"fmt"
	"strings"
)

// String renders a node in a compact, SQL-like form meant for logs, plan
// dumps and test expectations. Column references print as $varno.attno.
func String(node Node) string {
	var sb strings.Builder
	format(&sb, node)
	return sb.String()
}

// Strings renders every expression of the list.
func Strings(exprs []Expr) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = String(e)
	}
	return out
}

func format(sb *strings.Builder, node Node) {
	if isNil(node) {
		sb.WriteString("<nil>")
		return
	}
	switch n := node.(type) {
	case *Var:
		fmt.Fprintf(sb, "$%d.%d", n.VarNo, n.VarAttNo)
		if n.LevelsUp > 0 {
			fmt.Fprintf(sb, "^%d", n.LevelsUp)
		}
	case *Const:
		switch {
		case n.IsNull:
			sb.WriteString("NULL")
		default:
			if s, ok := n.Value.(string); ok {
				fmt.Fprintf(sb, "'%s'", strings.ReplaceAll(s, "'", "''"))
			} else {
				fmt.Fprintf(sb, "%v", n.Value)
			}
		}
	case *OpExpr:
		sb.WriteByte('(')
		if len(n.Args) == 1 {
			sb.WriteString(n.Operator)
			sb.WriteByte(' ')
			format(sb, n.Args[0])
		} else {
			for i, arg := range n.Args {
				if i > 0 {
					fmt.Fprintf(sb, " %s ", n.Operator)
				}
				format(sb, arg)
			}
		}
		sb.WriteByte(')')
	case *BoolExpr:
		if n.BoolOp == NotExpr {
			sb.WriteString("NOT ")
			format(sb, n.Args[0])
			return
		}
		sep := " AND "
		if n.BoolOp == OrExpr {
			sep = " OR "
		}
		sb.WriteByte('(')
		formatList(sb, n.Args, sep)
		sb.WriteByte(')')
	case *FuncExpr:
		sb.WriteString(n.FuncName)
		sb.WriteByte('(')
		formatList(sb, n.Args, ", ")
		sb.WriteByte(')')
	case *Aggref:
		sb.WriteString(n.AggName)
		sb.WriteByte('(')
		if len(n.Args) == 0 {
			sb.WriteByte('*')
		}
		formatList(sb, n.Args, ", ")
		sb.WriteByte(')')
		if n.AggFilter != nil {
			sb.WriteString(" FILTER (WHERE ")
			format(sb, n.AggFilter)
			sb.WriteByte(')')
		}
	case *WindowFunc:
		sb.WriteString(n.FuncName)
		sb.WriteByte('(')
		formatList(sb, n.Args, ", ")
		fmt.Fprintf(sb, ") OVER w%d", n.WinRef)
	case *GroupingFunc:
		sb.WriteString("GROUPING(")
		formatList(sb, n.Args, ", ")
		sb.WriteByte(')')
	case *NullTest:
		format(sb, n.Arg)
		if n.IsNull {
			sb.WriteString(" IS NULL")
		} else {
			sb.WriteString(" IS NOT NULL")
		}
	case *RelabelType:
		format(sb, n.Arg)
		if !n.Implicit {
			fmt.Fprintf(sb, "::%d", n.ResultType)
		}
	case *SubLink:
		switch n.SubLinkType {
		case ExistsSubLink:
			sb.WriteString("EXISTS(<subquery>)")
		case AnySubLink, AllSubLink:
			kind := "ANY"
			if n.SubLinkType == AllSubLink {
				kind = "ALL"
			}
			sb.WriteByte('(')
			format(sb, n.TestExpr)
			fmt.Fprintf(sb, " %s %s(<subquery>))", n.Operator, kind)
		default:
			sb.WriteString("(<subquery>)")
		}
	case *RangeTblRef:
		fmt.Fprintf(sb, "rte%d", n.RTIndex)
	case *JoinExpr:
		sb.WriteByte('(')
		format(sb, n.Larg)
		fmt.Fprintf(sb, " %s join ", n.JoinType)
		format(sb, n.Rarg)
		if n.Quals != nil {
			sb.WriteString(" on ")
			format(sb, n.Quals)
		}
		sb.WriteByte(')')
	case *FromExpr:
		sb.WriteString("from ")
		for i, item := range n.FromList {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, item)
		}
		if n.Quals != nil {
			sb.WriteString(" where ")
			format(sb, n.Quals)
		}
	}
}

func formatList(sb *strings.Builder, exprs []Expr, sep string) {
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(sep)
		}
		format(sb, e)
	}
}
