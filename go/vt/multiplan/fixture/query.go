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

package fixture

import (
	"encoding/json"
	"strings"

	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

type (
	querySpec struct {
		RangeTable   []*rteSpec         `json:"range_table"`
		From         []*joinTreeSpec    `json:"from"`
		Where        *exprSpec          `json:"where"`
		Targets      []*targetSpec      `json:"targets"`
		GroupBy      []int              `json:"group_by"`
		GroupingSets []*groupingSetSpec `json:"grouping_sets"`
		Having       *exprSpec          `json:"having"`
		OrderBy      []*sortSpec        `json:"order_by"`
		Distinct     []int              `json:"distinct"`
		DistinctOn   bool               `json:"distinct_on"`
		Windows      []*windowSpec      `json:"windows"`
		Limit        *exprSpec          `json:"limit"`
		Offset       *exprSpec          `json:"offset"`
		WithTies     bool               `json:"with_ties"`
		SetOperation string             `json:"set_operation"`
		Recursive    bool               `json:"recursive"`
		CTEs         []*cteSpec         `json:"ctes"`
		ForUpdate    []int              `json:"for_update"`
	}

	rteSpec struct {
		// Kind defaults to relation.
		Kind        string           `json:"kind"`
		Table       string           `json:"table"`
		Alias       string           `json:"alias"`
		Columns     []string         `json:"columns"`
		Inh         bool             `json:"inh"`
		TableSample *tableSampleSpec `json:"tablesample"`
		Subquery    *querySpec       `json:"subquery"`
		JSONTable   bool             `json:"json_table"`
		CTEName     string           `json:"cte_name"`
	}

	tableSampleSpec struct {
		Method     string      `json:"method"`
		Args       []*exprSpec `json:"args"`
		Repeatable *exprSpec   `json:"repeatable"`
	}

	// joinTreeSpec is either a reference to a range table position or a join.
	joinTreeSpec struct {
		Ref  int       `json:"ref"`
		Join *joinSpec `json:"join"`
	}

	joinSpec struct {
		Type  string        `json:"type"`
		Left  *joinTreeSpec `json:"left"`
		Right *joinTreeSpec `json:"right"`
		On    *exprSpec     `json:"on"`
	}

	targetSpec struct {
		Expr *exprSpec `json:"expr"`
		Name string    `json:"name"`
		Junk bool      `json:"junk"`
	}

	// sortSpec orders by the target entry at 1-based position Target.
	sortSpec struct {
		Target     int  `json:"target"`
		Desc       bool `json:"desc"`
		NullsFirst bool `json:"nulls_first"`
	}

	groupingSetSpec struct {
		Kind    string `json:"kind"`
		Content []int  `json:"content"`
	}

	windowSpec struct {
		Name        string      `json:"name"`
		PartitionBy []int       `json:"partition_by"`
		OrderBy     []*sortSpec `json:"order_by"`
	}

	cteSpec struct {
		Name      string     `json:"name"`
		Query     *querySpec `json:"query"`
		Recursive bool       `json:"recursive"`
	}

	// exprSpec holds exactly one kind of expression.
	exprSpec struct {
		Var      string `json:"var"`
		LevelsUp int    `json:"levels_up"`
		Type     string `json:"type"`

		Const any  `json:"const"`
		Null  bool `json:"null"`

		Op   string      `json:"op"`
		Args []*exprSpec `json:"args"`

		And []*exprSpec `json:"and"`
		Or  []*exprSpec `json:"or"`
		Not *exprSpec   `json:"not"`

		Func   string    `json:"func"`
		Agg    string    `json:"agg"`
		Filter *exprSpec `json:"filter"`
		Window string    `json:"window"`
		WinRef int       `json:"winref"`

		Exists   *querySpec  `json:"exists"`
		Subquery *querySpec  `json:"subquery"`
		In       *querySpec  `json:"in"`
		Grouping []*exprSpec `json:"grouping"`

		IsNull    *exprSpec `json:"is_null"`
		IsNotNull *exprSpec `json:"is_not_null"`
	}
)

var rteKinds = map[string]querytree.RTEKind{
	"relation":  querytree.RTERelation,
	"subquery":  querytree.RTESubquery,
	"join":      querytree.RTEJoin,
	"function":  querytree.RTEFunction,
	"tablefunc": querytree.RTETableFunc,
	"values":    querytree.RTEValues,
	"cte":       querytree.RTECTE,
	"result":    querytree.RTEResult,
}

var setOperations = map[string]querytree.SetOperation{
	"union":     querytree.SetOpUnion,
	"intersect": querytree.SetOpIntersect,
	"except":    querytree.SetOpExcept,
}

var groupingSetKinds = map[string]querytree.GroupingSetKind{
	"":       querytree.GroupingSetSets,
	"sets":   querytree.GroupingSetSets,
	"simple": querytree.GroupingSetSimple,
	"rollup": querytree.GroupingSetRollup,
	"cube":   querytree.GroupingSetCube,
}

func invalid(format string, args ...any) error {
	return vterrors.Errorf(codes.InvalidArgument, format, args...)
}

func (d *decoder) query(spec *querySpec) (*querytree.Query, error) {
	q := &querytree.Query{}

	for _, cte := range spec.CTEs {
		if cte.Query == nil {
			return nil, invalid("common table expression %s has no query", cte.Name)
		}
		sub, err := d.query(cte.Query)
		if err != nil {
			return nil, vterrors.Wrapf(err, "common table expression %s", cte.Name)
		}
		q.CTEList = append(q.CTEList, &querytree.CommonTableExpr{Name: cte.Name, Query: sub, Recursive: cte.Recursive})
	}
	q.HasRecursive = spec.Recursive

	for i, rs := range spec.RangeTable {
		rte, err := d.rangeTblEntry(rs)
		if err != nil {
			return nil, vterrors.Wrapf(err, "range table entry %d", i+1)
		}
		q.RangeTable = append(q.RangeTable, rte)
	}

	from := &querytree.FromExpr{}
	for _, js := range spec.From {
		node, err := d.joinTree(js, len(q.RangeTable))
		if err != nil {
			return nil, err
		}
		from.FromList = append(from.FromList, node)
	}
	where, err := d.expr(spec.Where)
	if err != nil {
		return nil, vterrors.Wrap(err, "where")
	}
	from.Quals = where
	q.JoinTree = from

	for i, ts := range spec.Targets {
		e, err := d.expr(ts.Expr)
		if err != nil {
			return nil, vterrors.Wrapf(err, "target %d", i+1)
		}
		if e == nil {
			return nil, invalid("target %d has no expression", i+1)
		}
		q.TargetList = append(q.TargetList, &querytree.TargetEntry{
			Expr:    e,
			ResNo:   i + 1,
			ResName: ts.Name,
			ResJunk: ts.Junk,
		})
	}

	target := func(resno int) (int, error) {
		if resno < 1 || resno > len(q.TargetList) {
			return 0, invalid("no target %d", resno)
		}
		// a target is referenced by its position
		q.TargetList[resno-1].ResSortGroupRef = resno
		return resno, nil
	}
	sortClauses := func(specs []*sortSpec) ([]*querytree.SortGroupClause, error) {
		var out []*querytree.SortGroupClause
		for _, s := range specs {
			ref, err := target(s.Target)
			if err != nil {
				return nil, err
			}
			out = append(out, &querytree.SortGroupClause{TLESortGroupRef: ref, Descending: s.Desc, NullsFirst: s.NullsFirst})
		}
		return out, nil
	}
	groupClauses := func(resnos []int) ([]*querytree.SortGroupClause, error) {
		var out []*querytree.SortGroupClause
		for _, resno := range resnos {
			ref, err := target(resno)
			if err != nil {
				return nil, err
			}
			out = append(out, &querytree.SortGroupClause{TLESortGroupRef: ref})
		}
		return out, nil
	}

	if q.GroupClause, err = groupClauses(spec.GroupBy); err != nil {
		return nil, vterrors.Wrap(err, "group by")
	}
	for _, gs := range spec.GroupingSets {
		kind, ok := groupingSetKinds[strings.ToLower(gs.Kind)]
		if !ok {
			return nil, invalid("unknown grouping set kind %q", gs.Kind)
		}
		q.GroupingSets = append(q.GroupingSets, &querytree.GroupingSet{Kind: kind, Content: gs.Content})
	}
	if q.SortClause, err = sortClauses(spec.OrderBy); err != nil {
		return nil, vterrors.Wrap(err, "order by")
	}
	if q.DistinctClause, err = groupClauses(spec.Distinct); err != nil {
		return nil, vterrors.Wrap(err, "distinct")
	}
	q.HasDistinctOn = spec.DistinctOn

	for i, ws := range spec.Windows {
		wc := &querytree.WindowClause{Name: ws.Name, WinRef: i + 1}
		if wc.PartitionClause, err = groupClauses(ws.PartitionBy); err != nil {
			return nil, vterrors.Wrapf(err, "window %d", i+1)
		}
		if wc.OrderClause, err = sortClauses(ws.OrderBy); err != nil {
			return nil, vterrors.Wrapf(err, "window %d", i+1)
		}
		q.WindowClause = append(q.WindowClause, wc)
	}

	if q.HavingQual, err = d.expr(spec.Having); err != nil {
		return nil, vterrors.Wrap(err, "having")
	}
	if q.LimitCount, err = d.expr(spec.Limit); err != nil {
		return nil, vterrors.Wrap(err, "limit")
	}
	if q.LimitOffset, err = d.expr(spec.Offset); err != nil {
		return nil, vterrors.Wrap(err, "offset")
	}
	if spec.WithTies {
		q.LimitOption = querytree.LimitOptionWithTies
	}

	if spec.SetOperation != "" {
		op, ok := setOperations[strings.ToLower(spec.SetOperation)]
		if !ok {
			return nil, invalid("unknown set operation %q", spec.SetOperation)
		}
		q.SetOperations = &querytree.SetOperationStmt{Op: op}
	}
	for _, rt := range spec.ForUpdate {
		q.RowMarks = append(q.RowMarks, &querytree.RowMarkClause{RTIndex: rt, Strength: querytree.LockForUpdate})
	}
	q.HasForUpdate = len(q.RowMarks) > 0

	setQueryFlags(q)
	return q, nil
}

// setQueryFlags derives the Has* flags from the expressions of this query
// level.
func setQueryFlags(q *querytree.Query) {
	exprs := []querytree.Expr{q.JoinTree.Quals, q.HavingQual, q.LimitCount, q.LimitOffset}
	for _, te := range q.TargetList {
		exprs = append(exprs, te.Expr)
	}
	for _, join := range querytree.JoinExprs(q.JoinTree) {
		exprs = append(exprs, join.Quals)
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		q.HasAggs = q.HasAggs || querytree.ExprContains(e, isAggref)
		q.HasWindowFuncs = q.HasWindowFuncs || querytree.ExprContains(e, isWindowFunc)
		q.HasSubLinks = q.HasSubLinks || querytree.ExprContains(e, isSubLink)
	}
}

func isAggref(n querytree.Node) bool {
	_, ok := n.(*querytree.Aggref)
	return ok
}

func isWindowFunc(n querytree.Node) bool {
	_, ok := n.(*querytree.WindowFunc)
	return ok
}

func isSubLink(n querytree.Node) bool {
	_, ok := n.(*querytree.SubLink)
	return ok
}

func (d *decoder) rangeTblEntry(spec *rteSpec) (*querytree.RangeTblEntry, error) {
	kindName := spec.Kind
	if kindName == "" {
		kindName = "relation"
	}
	kind, ok := rteKinds[kindName]
	if !ok {
		return nil, invalid("unknown range table entry kind %q", spec.Kind)
	}
	rte := &querytree.RangeTblEntry{Kind: kind, Inh: spec.Inh, CTEName: spec.CTEName}

	name := spec.Alias
	if name == "" {
		name = spec.Table
	}
	if spec.Alias != "" {
		rte.Alias = &querytree.Alias{AliasName: spec.Alias}
	}
	rte.ERef = &querytree.Alias{AliasName: name, ColNames: spec.Columns}

	switch kind {
	case querytree.RTERelation:
		id, ok := d.relations[spec.Table]
		if !ok {
			return nil, invalid("unknown table %q", spec.Table)
		}
		rte.RelationID = id
	case querytree.RTESubquery:
		if spec.Subquery == nil {
			return nil, invalid("sub-query entry without a query")
		}
		sub, err := d.query(spec.Subquery)
		if err != nil {
			return nil, err
		}
		rte.Subquery = sub
	case querytree.RTETableFunc:
		rte.TableFunc = &querytree.TableFunc{IsJSONTable: spec.JSONTable}
	}

	if ts := spec.TableSample; ts != nil {
		args, err := d.exprs(ts.Args)
		if err != nil {
			return nil, err
		}
		repeatable, err := d.expr(ts.Repeatable)
		if err != nil {
			return nil, err
		}
		rte.TableSample = &querytree.TableSampleClause{Method: ts.Method, Args: args, Repeatable: repeatable}
	}
	return rte, nil
}

func (d *decoder) joinTree(spec *joinTreeSpec, rangeTableSize int) (querytree.JoinTreeNode, error) {
	switch {
	case spec == nil:
		return nil, invalid("empty join tree item")
	case spec.Join != nil:
		joinType := querytree.JoinInner
		if spec.Join.Type != "" {
			var ok bool
			if joinType, ok = querytree.ParseJoinType(strings.ToLower(spec.Join.Type)); !ok {
				return nil, invalid("unknown join type %q", spec.Join.Type)
			}
		}
		left, err := d.joinTree(spec.Join.Left, rangeTableSize)
		if err != nil {
			return nil, err
		}
		right, err := d.joinTree(spec.Join.Right, rangeTableSize)
		if err != nil {
			return nil, err
		}
		on, err := d.expr(spec.Join.On)
		if err != nil {
			return nil, vterrors.Wrap(err, "join condition")
		}
		return &querytree.JoinExpr{JoinType: joinType, Larg: left, Rarg: right, Quals: on}, nil
	case spec.Ref < 1 || spec.Ref > rangeTableSize:
		return nil, invalid("reference to range table entry %d out of %d", spec.Ref, rangeTableSize)
	default:
		return &querytree.RangeTblRef{RTIndex: spec.Ref}, nil
	}
}

func (d *decoder) exprs(specs []*exprSpec) ([]querytree.Expr, error) {
	var out []querytree.Expr
	for _, s := range specs {
		e, err := d.expr(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// expr decodes one expression. A nil spec is a nil expression.
func (d *decoder) expr(spec *exprSpec) (querytree.Expr, error) {
	if spec == nil {
		return nil, nil
	}
	typ := querytree.InvalidType
	if spec.Type != "" {
		var ok bool
		if typ, ok = parseType(spec.Type); !ok {
			return nil, invalid("unknown type %q", spec.Type)
		}
	}

	switch {
	case spec.Var != "":
		varno, attno, err := parseVar(spec.Var)
		if err != nil {
			return nil, err
		}
		if typ == querytree.InvalidType {
			typ = querytree.Int4Type
		}
		return &querytree.Var{VarNo: varno, VarAttNo: attno, VarType: typ, LevelsUp: spec.LevelsUp}, nil
	case spec.Null:
		return &querytree.Const{ConstType: typ, IsNull: true}, nil
	case spec.Const != nil:
		return constant(spec.Const, typ)
	case spec.Op != "":
		args, err := d.exprs(spec.Args)
		if err != nil {
			return nil, err
		}
		return &querytree.OpExpr{Operator: spec.Op, Args: args, ResultType: querytree.BoolType}, nil
	case spec.And != nil:
		args, err := d.exprs(spec.And)
		if err != nil {
			return nil, err
		}
		return &querytree.BoolExpr{BoolOp: querytree.AndExpr, Args: args}, nil
	case spec.Or != nil:
		args, err := d.exprs(spec.Or)
		if err != nil {
			return nil, err
		}
		return &querytree.BoolExpr{BoolOp: querytree.OrExpr, Args: args}, nil
	case spec.Not != nil:
		arg, err := d.expr(spec.Not)
		if err != nil {
			return nil, err
		}
		return &querytree.BoolExpr{BoolOp: querytree.NotExpr, Args: []querytree.Expr{arg}}, nil
	case spec.Func != "":
		args, err := d.exprs(spec.Args)
		if err != nil {
			return nil, err
		}
		return &querytree.FuncExpr{FuncName: spec.Func, Args: args}, nil
	case spec.Agg != "":
		args, err := d.exprs(spec.Args)
		if err != nil {
			return nil, err
		}
		filter, err := d.expr(spec.Filter)
		if err != nil {
			return nil, err
		}
		return &querytree.Aggref{AggName: spec.Agg, Args: args, AggFilter: filter}, nil
	case spec.Window != "":
		args, err := d.exprs(spec.Args)
		if err != nil {
			return nil, err
		}
		return &querytree.WindowFunc{FuncName: spec.Window, Args: args, WinRef: spec.WinRef}, nil
	case spec.Exists != nil:
		return d.subLink(querytree.ExistsSubLink, nil, spec.Exists)
	case spec.Subquery != nil:
		return d.subLink(querytree.ExprSubLink, nil, spec.Subquery)
	case spec.In != nil:
		if len(spec.Args) != 1 {
			return nil, invalid("IN sub-query needs exactly one argument")
		}
		test, err := d.expr(spec.Args[0])
		if err != nil {
			return nil, err
		}
		return d.subLink(querytree.AnySubLink, test, spec.In)
	case spec.Grouping != nil:
		args, err := d.exprs(spec.Grouping)
		if err != nil {
			return nil, err
		}
		return &querytree.GroupingFunc{Args: args}, nil
	case spec.IsNull != nil:
		arg, err := d.expr(spec.IsNull)
		if err != nil {
			return nil, err
		}
		return &querytree.NullTest{Arg: arg, IsNull: true}, nil
	case spec.IsNotNull != nil:
		arg, err := d.expr(spec.IsNotNull)
		if err != nil {
			return nil, err
		}
		return &querytree.NullTest{Arg: arg}, nil
	}
	return nil, invalid("empty expression")
}

func (d *decoder) subLink(kind querytree.SubLinkType, test querytree.Expr, spec *querySpec) (querytree.Expr, error) {
	sub, err := d.query(spec)
	if err != nil {
		return nil, vterrors.Wrap(err, "sub-select")
	}
	link := &querytree.SubLink{SubLinkType: kind, TestExpr: test, Subselect: sub}
	if kind == querytree.AnySubLink {
		link.Operator = "="
	}
	return link, nil
}

// constant converts a decoded scalar. Numbers arrive as json.Number.
func constant(v any, typ querytree.TypeID) (querytree.Expr, error) {
	c := &querytree.Const{ConstType: typ}
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			c.Value = i
			if c.ConstType == querytree.InvalidType {
				c.ConstType = querytree.Int4Type
			}
			break
		}
		f, err := v.Float64()
		if err != nil {
			return nil, invalid("bad number %q", v.String())
		}
		c.Value = f
		if c.ConstType == querytree.InvalidType {
			c.ConstType = querytree.Float8Type
		}
	case string:
		c.Value = v
		if c.ConstType == querytree.InvalidType {
			c.ConstType = querytree.TextType
		}
	case bool:
		c.Value = v
		if c.ConstType == querytree.InvalidType {
			c.ConstType = querytree.BoolType
		}
	default:
		return nil, invalid("unsupported constant %v", v)
	}
	return c, nil
}
