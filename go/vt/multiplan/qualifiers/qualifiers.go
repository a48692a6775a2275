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

// Package qualifiers finds the predicates of a query's FROM tree and sorts
// them into selection and join clauses.
package qualifiers

import (
	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// ExtractBaseAndOuterQualifiers collects the predicates of the FROM tree.
// WHERE predicates and the ON predicates of inner and semi joins go to base;
// the ON predicates of outer joins go to outer and must never be evaluated
// as plain filters. ON and WHERE predicates are constant folded, canonicalized
// and split into an implicit conjunction first.
//
// The input is not modified: the work happens on a deep copy, so the clauses
// returned are owned by the caller.
func ExtractBaseAndOuterQualifiers(from *querytree.FromExpr) (base, outer []querytree.Expr) {
	if from == nil {
		return nil, nil
	}
	fromCopy := querytree.CloneFromExpr(from)
	_ = querytree.Walk(func(node querytree.Node) (bool, error) {
		switch node := node.(type) {
		case *querytree.JoinExpr:
			quals := normalize(node.Quals)
			switch {
			case node.JoinType == querytree.JoinInner || node.JoinType == querytree.JoinSemi:
				base = append(base, quals...)
			case node.JoinType.IsOuter():
				outer = append(outer, quals...)
			}
		case *querytree.FromExpr:
			base = append(base, normalize(node.Quals)...)
		case querytree.Expr:
			// no join tree nodes below an expression
			return false, nil
		}
		return true, nil
	}, fromCopy)
	return base, outer
}

func normalize(quals querytree.Expr) []querytree.Expr {
	if quals == nil {
		return nil
	}
	simplified := querytree.EvalConstExpressions(quals)
	simplified = querytree.CanonicalizeQual(simplified)
	return querytree.MakeAndsImplicit(simplified)
}

// WhereClauseList returns the base qualifiers of the FROM tree.
func WhereClauseList(from *querytree.FromExpr) []querytree.Expr {
	base, _ := ExtractBaseAndOuterQualifiers(from)
	return base
}

// QualifierList returns the base qualifiers followed by the outer join ones.
func QualifierList(from *querytree.FromExpr) []querytree.Expr {
	base, outer := ExtractBaseAndOuterQualifiers(from)
	return append(base, outer...)
}

// DeferErrorIfUnsupportedClause makes sure no clause is silently dropped: each
// one must be a selection clause, a join clause or a disjunction.
func DeferErrorIfUnsupportedClause(clauses []querytree.Expr) *vterrors.DeferredError {
	for _, clause := range clauses {
		if clause == nil || !(IsSelectClause(clause) || IsJoinClause(clause) || IsOrClause(clause)) {
			return vterrors.NewDeferredError(codes.Unimplemented, "unsupported clause type", "", "")
		}
	}
	return nil
}

// IsOrClause reports whether the clause is an OR.
func IsOrClause(clause querytree.Expr) bool {
	b, ok := clause.(*querytree.BoolExpr)
	return ok && b.BoolOp == querytree.OrExpr
}
