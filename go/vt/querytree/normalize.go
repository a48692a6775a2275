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

// Normalisation rewrites return the node they were given whenever nothing
// below it changed, so column references of untouched subtrees keep their
// identity.

// negators maps every comparison operator to the operator of its negation.
var negators = map[string]string{
	"=":  "<>",
	"<>": "=",
	"<":  ">=",
	">=": "<",
	">":  "<=",
	"<=": ">",
}

// EvalConstExpressions folds constant sub-expressions: boolean connectives
// with constant arguments, NOT pushed through connectives and comparisons,
// comparisons and arithmetic over literals, and null tests of literals.
// Aggregates are never evaluated and sub-selects are not entered.
func EvalConstExpressions(e Expr) Expr {
	switch e := e.(type) {
	case *BoolExpr:
		return simplifyBoolExpr(e)
	case *OpExpr:
		args, changed := evalConstList(e.Args)
		op := e
		if changed {
			op = &OpExpr{Operator: e.Operator, Args: args, ResultType: e.ResultType}
		}
		if folded, ok := foldOpExpr(op); ok {
			return folded
		}
		return op
	case *FuncExpr:
		if args, changed := evalConstList(e.Args); changed {
			return &FuncExpr{FuncName: e.FuncName, Args: args}
		}
	case *Aggref:
		args, changed := evalConstList(e.Args)
		filter := EvalConstExpressions(e.AggFilter)
		if changed || filter != e.AggFilter {
			return &Aggref{AggName: e.AggName, Args: args, AggFilter: filter}
		}
	case *WindowFunc:
		if args, changed := evalConstList(e.Args); changed {
			return &WindowFunc{FuncName: e.FuncName, Args: args, WinRef: e.WinRef}
		}
	case *NullTest:
		arg := EvalConstExpressions(e.Arg)
		if c, ok := arg.(*Const); ok {
			return boolConst(c.IsNull == e.IsNull)
		}
		if arg != e.Arg {
			return &NullTest{Arg: arg, IsNull: e.IsNull}
		}
	case *RelabelType:
		arg := EvalConstExpressions(e.Arg)
		if c, ok := arg.(*Const); ok {
			return &Const{ConstType: e.ResultType, Value: c.Value, IsNull: c.IsNull}
		}
		if arg != e.Arg {
			return &RelabelType{Arg: arg, ResultType: e.ResultType, Implicit: e.Implicit}
		}
	case *SubLink:
		if test := EvalConstExpressions(e.TestExpr); test != e.TestExpr {
			return &SubLink{SubLinkType: e.SubLinkType, TestExpr: test, Operator: e.Operator, Subselect: e.Subselect}
		}
	}
	return e
}

func evalConstList(in []Expr) ([]Expr, bool) {
	var out []Expr
	for i, e := range in {
		simplified := EvalConstExpressions(e)
		if simplified != e && out == nil {
			out = make([]Expr, len(in))
			copy(out, in[:i])
		}
		if out != nil {
			out[i] = simplified
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func simplifyBoolExpr(e *BoolExpr) Expr {
	if e.BoolOp == NotExpr {
		arg := EvalConstExpressions(e.Args[0])
		if negated, ok := negate(arg); ok {
			return negated
		}
		if arg != e.Args[0] {
			return &BoolExpr{BoolOp: NotExpr, Args: []Expr{arg}}
		}
		return e
	}

	// AND drops TRUE and is decided by FALSE; OR the other way around.
	identity := e.BoolOp == AndExpr
	changed := false
	var args []Expr
	var null *Const
	var add func(arg Expr) bool
	add = func(arg Expr) bool {
		simplified := EvalConstExpressions(arg)
		if simplified != arg {
			changed = true
		}
		if nested, ok := simplified.(*BoolExpr); ok && nested.BoolOp == e.BoolOp {
			changed = true
			for _, a := range nested.Args {
				if add(a) {
					return true
				}
			}
			return false
		}
		if c, ok := simplified.(*Const); ok {
			changed = true
			if c.IsNull {
				null = c
				return false
			}
			if b, isBool := c.Value.(bool); isBool {
				return b != identity
			}
		}
		args = append(args, simplified)
		return false
	}
	for _, arg := range e.Args {
		if add(arg) {
			return boolConst(!identity)
		}
	}
	if !changed {
		return e
	}
	if null != nil {
		args = append(args, null)
	}
	switch len(args) {
	case 0:
		return boolConst(identity)
	case 1:
		return args[0]
	}
	return &BoolExpr{BoolOp: e.BoolOp, Args: args}
}

// negate returns the simplified negation of e, if there is one.
func negate(e Expr) (Expr, bool) {
	switch e := e.(type) {
	case *Const:
		if e.IsNull {
			return e, true
		}
		if b, ok := e.Value.(bool); ok {
			return boolConst(!b), true
		}
	case *OpExpr:
		if neg, ok := negators[e.Operator]; ok && len(e.Args) == 2 {
			return &OpExpr{Operator: neg, Args: e.Args, ResultType: e.ResultType}, true
		}
	case *NullTest:
		return &NullTest{Arg: e.Arg, IsNull: !e.IsNull}, true
	case *BoolExpr:
		switch e.BoolOp {
		case NotExpr:
			return e.Args[0], true
		case AndExpr, OrExpr:
			op := OrExpr
			if e.BoolOp == OrExpr {
				op = AndExpr
			}
			args := make([]Expr, len(e.Args))
			for i, arg := range e.Args {
				if neg, ok := negate(arg); ok {
					args[i] = neg
				} else {
					args[i] = &BoolExpr{BoolOp: NotExpr, Args: []Expr{arg}}
				}
			}
			return &BoolExpr{BoolOp: op, Args: args}, true
		}
	}
	return nil, false
}

func foldOpExpr(e *OpExpr) (Expr, bool) {
	consts := make([]*Const, len(e.Args))
	for i, arg := range e.Args {
		c, ok := arg.(*Const)
		if !ok {
			return nil, false
		}
		if c.IsNull {
			return &Const{ConstType: e.ResultType, IsNull: true}, true
		}
		consts[i] = c
	}
	if len(consts) != 2 {
		return nil, false
	}
	l, r := consts[0].Value, consts[1].Value
	if cmp, ok := compareValues(l, r); ok {
		switch e.Operator {
		case "=":
			return boolConst(cmp == 0), true
		case "<>":
			return boolConst(cmp != 0), true
		case "<":
			return boolConst(cmp < 0), true
		case "<=":
			return boolConst(cmp <= 0), true
		case ">":
			return boolConst(cmp > 0), true
		case ">=":
			return boolConst(cmp >= 0), true
		}
	}
	li, lok := asInt(l)
	ri, rok := asInt(r)
	if lok && rok {
		switch e.Operator {
		case "+":
			return &Const{ConstType: e.ResultType, Value: li + ri}, true
		case "-":
			return &Const{ConstType: e.ResultType, Value: li - ri}, true
		case "*":
			return &Const{ConstType: e.ResultType, Value: li * ri}, true
		}
	}
	return nil, false
}

func compareValues(l, r any) (int, bool) {
	if li, ok := asInt(l); ok {
		if ri, ok := asInt(r); ok {
			return compare(li, ri), true
		}
	}
	if lf, ok := asFloat(l); ok {
		if rf, ok := asFloat(r); ok {
			return compare(lf, rf), true
		}
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return compare(ls, rs), true
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			if lb == rb {
				return 0, true
			}
			if !lb {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func compare[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func asInt(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func boolConst(b bool) *Const {
	return &Const{ConstType: BoolType, Value: b}
}

// CanonicalizeQual flattens nested ANDs and ORs and pulls terms that appear in
// every arm of an OR out in front of it:
//
//	(A AND B) OR (A AND C)  =>  A AND (B OR C)
//	A OR (A AND B)          =>  A
func CanonicalizeQual(e Expr) Expr {
	if e == nil {
		return nil
	}
	return findDuplicateOrs(e)
}

func findDuplicateOrs(e Expr) Expr {
	b, ok := e.(*BoolExpr)
	if !ok || b.BoolOp == NotExpr {
		return e
	}
	args, changed := flattenArgs(b)
	if b.BoolOp == AndExpr {
		if !changed {
			return e
		}
		return &BoolExpr{BoolOp: AndExpr, Args: args}
	}
	if out, rewritten := processDuplicateOrs(args); rewritten {
		return out
	}
	if !changed {
		return e
	}
	return &BoolExpr{BoolOp: OrExpr, Args: args}
}

// flattenArgs canonicalizes every argument and splices nested connectives
// of the same kind into the parent's argument list.
func flattenArgs(b *BoolExpr) ([]Expr, bool) {
	changed := false
	var args []Expr
	for _, arg := range b.Args {
		canon := findDuplicateOrs(arg)
		if canon != arg {
			changed = true
		}
		if nested, ok := canon.(*BoolExpr); ok && nested.BoolOp == b.BoolOp {
			changed = true
			args = append(args, nested.Args...)
			continue
		}
		args = append(args, canon)
	}
	return args, changed
}

func processDuplicateOrs(arms []Expr) (Expr, bool) {
	if len(arms) == 1 {
		return arms[0], true
	}
	terms := make([][]Expr, len(arms))
	reference := 0
	for i, arm := range arms {
		terms[i] = MakeAndsImplicit(arm)
		if len(terms[i]) < len(terms[reference]) {
			reference = i
		}
	}

	var winners []Expr
	for _, candidate := range terms[reference] {
		if containsEqual(winners, candidate) {
			continue
		}
		inAll := true
		for i, armTerms := range terms {
			if i != reference && !containsEqual(armTerms, candidate) {
				inAll = false
				break
			}
		}
		if inAll {
			winners = append(winners, candidate)
		}
	}
	if len(winners) == 0 {
		return nil, false
	}

	var remaining []Expr
	for _, armTerms := range terms {
		var rest []Expr
		for _, term := range armTerms {
			if !containsEqual(winners, term) {
				rest = append(rest, term)
			}
		}
		if len(rest) == 0 {
			// this arm is implied by the winners alone, so the whole OR is.
			remaining = nil
			break
		}
		remaining = append(remaining, MakeAndsExplicit(rest))
	}
	switch len(remaining) {
	case 0:
	case 1:
		winners = append(winners, remaining[0])
	default:
		winners = append(winners, &BoolExpr{BoolOp: OrExpr, Args: remaining})
	}
	return MakeAndsExplicit(winners), true
}

func containsEqual(list []Expr, e Expr) bool {
	for _, item := range list {
		if Equals(item, e) {
			return true
		}
	}
	return false
}

// MakeAndsImplicit turns a qualifier into an implicitly AND-ed list. A nil
// qualifier and a constant TRUE yield an empty list.
func MakeAndsImplicit(e Expr) []Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *BoolExpr:
		if e.BoolOp == AndExpr {
			return append([]Expr(nil), e.Args...)
		}
	case *Const:
		if b, ok := e.Value.(bool); ok && b && !e.IsNull {
			return nil
		}
	}
	return []Expr{e}
}

// MakeAndsExplicit is the inverse of MakeAndsImplicit.
func MakeAndsExplicit(list []Expr) Expr {
	switch len(list) {
	case 0:
		return boolConst(true)
	case 1:
		return list[0]
	}
	return &BoolExpr{BoolOp: AndExpr, Args: list}
}
