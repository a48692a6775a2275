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

// Package querytree holds the analyzed query representation the logical
// planner consumes: a range table addressed by 1-based positions, a join
// tree referencing it, and expressions whose column references name a range
// table position and an attribute number.
//
// The representation mirrors what a parse-analyze stage hands to planning.
// Nothing in this package talks to the catalog.
package querytree

type (
	// RelationID identifies a relation in the catalog.
	RelationID uint32

	// TypeID identifies a data type in the catalog.
	TypeID uint32

	// Node is implemented by every expression and every join tree node.
	Node interface {
		iNode()
	}

	// Expr is a scalar expression.
	Expr interface {
		Node
		iExpr()
	}

	// JoinTreeNode is one of *FromExpr, *JoinExpr or *RangeTblRef.
	JoinTreeNode interface {
		Node
		iJoinTreeNode()
	}
)

// InvalidRelationID is never assigned to a catalog relation.
const InvalidRelationID RelationID = 0

// Well known type ids.
const (
	InvalidType TypeID = 0
	BoolType    TypeID = 16
	Int8Type    TypeID = 20
	Int4Type    TypeID = 23
	TextType    TypeID = 25
	Float8Type  TypeID = 701
	NumericType TypeID = 1700
)

// RTEKind is the kind of a range table entry.
type RTEKind int

const (
	RTERelation RTEKind = iota
	RTESubquery
	RTEJoin
	RTEFunction
	RTETableFunc
	RTEValues
	RTECTE
	RTENamedTuplestore
	RTEResult
	RTEGroup
)

var rteKindNames = [...]string{
	RTERelation:        "relation",
	RTESubquery:        "subquery",
	RTEJoin:            "join",
	RTEFunction:        "function",
	RTETableFunc:       "tablefunc",
	RTEValues:          "values",
	RTECTE:             "cte",
	RTENamedTuplestore: "tuplestore",
	RTEResult:          "result",
	RTEGroup:           "group",
}

func (k RTEKind) String() string {
	if k < 0 || int(k) >= len(rteKindNames) {
		return "unknown"
	}
	return rteKindNames[k]
}

// Alias is a table alias with optional column aliases.
type Alias struct {
	AliasName string
	ColNames  []string
}

// TableSampleClause is a TABLESAMPLE specification.
type TableSampleClause struct {
	Method     string
	Args       []Expr
	Repeatable Expr
}

// TableFunc describes a table function source such as JSON_TABLE or XMLTABLE.
type TableFunc struct {
	IsJSONTable bool
}

// RangeTblEntry is one entry of a query's range table.
type RangeTblEntry struct {
	Kind       RTEKind
	RelationID RelationID
	Alias      *Alias
	ERef       *Alias

	// Inh is set when descendant (inheritance or partition) tables are
	// included. On a subquery entry it marks a flattened UNION ALL.
	Inh         bool
	TableSample *TableSampleClause

	Subquery    *Query
	Functions   []*FuncExpr
	TableFunc   *TableFunc
	ValuesLists [][]Expr
	CTEName     string
}

// JoinType is the kind of join in a JoinExpr.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinFull
	JoinRight
	JoinSemi
	JoinAnti
	JoinRightAnti
	JoinUniqueOuter
	JoinUniqueInner
)

var joinTypeNames = [...]string{
	JoinInner:       "inner",
	JoinLeft:        "left",
	JoinFull:        "full",
	JoinRight:       "right",
	JoinSemi:        "semi",
	JoinAnti:        "anti",
	JoinRightAnti:   "right anti",
	JoinUniqueOuter: "unique outer",
	JoinUniqueInner: "unique inner",
}

func (jt JoinType) String() string {
	if jt < 0 || int(jt) >= len(joinTypeNames) {
		return "unknown"
	}
	return joinTypeNames[jt]
}

// IsOuter reports whether rows of one side survive without a match.
func (jt JoinType) IsOuter() bool {
	switch jt {
	case JoinLeft, JoinFull, JoinRight, JoinAnti, JoinRightAnti:
		return true
	}
	return false
}

// ParseJoinType is the inverse of JoinType.String.
func ParseJoinType(s string) (JoinType, bool) {
	for jt, name := range joinTypeNames {
		if name == s {
			return JoinType(jt), true
		}
	}
	return JoinInner, false
}

type (
	// FromExpr is a FROM list with the WHERE clause that applies to it.
	FromExpr struct {
		FromList []JoinTreeNode
		Quals    Expr
	}

	// JoinExpr is an explicit JOIN with its ON clause.
	JoinExpr struct {
		JoinType JoinType
		Larg     JoinTreeNode
		Rarg     JoinTreeNode
		Quals    Expr
		// RTIndex is the range table position of the join's own entry, or 0.
		RTIndex int
	}

	// RangeTblRef points at a range table entry.
	RangeTblRef struct {
		RTIndex int
	}
)

// Expressions.
type (
	// Var is a column reference: range table position VarNo, attribute
	// VarAttNo. LevelsUp is non-zero for references to an outer query.
	Var struct {
		VarNo    int
		VarAttNo int
		VarType  TypeID
		LevelsUp int
	}

	// Const is a literal.
	Const struct {
		ConstType TypeID
		Value     any
		IsNull    bool
	}

	// OpExpr applies an operator to one or two arguments.
	OpExpr struct {
		Operator   string
		Args       []Expr
		ResultType TypeID
	}

	// BoolExpr is AND, OR, or NOT.
	BoolExpr struct {
		BoolOp BoolExprType
		Args   []Expr
	}

	// FuncExpr is a plain function call.
	FuncExpr struct {
		FuncName string
		Args     []Expr
	}

	// Aggref is an aggregate call.
	Aggref struct {
		AggName   string
		Args      []Expr
		AggFilter Expr
	}

	// WindowFunc is a window function call. WinRef names its WindowClause.
	WindowFunc struct {
		FuncName string
		Args     []Expr
		WinRef   int
	}

	// SubLink is a sub-select appearing in an expression.
	SubLink struct {
		SubLinkType SubLinkType
		TestExpr    Expr
		Operator    string
		Subselect   *Query
	}

	// GroupingFunc is GROUPING(...).
	GroupingFunc struct {
		Args []Expr
	}

	// NullTest is IS [NOT] NULL.
	NullTest struct {
		Arg    Expr
		IsNull bool
	}

	// RelabelType is a binary compatible coercion.
	RelabelType struct {
		Arg        Expr
		ResultType TypeID
		Implicit   bool
	}
)

// BoolExprType is the operator of a BoolExpr.
type BoolExprType int

const (
	AndExpr BoolExprType = iota
	OrExpr
	NotExpr
)

// SubLinkType is the kind of a SubLink.
type SubLinkType int

const (
	ExistsSubLink SubLinkType = iota
	AnySubLink
	AllSubLink
	ExprSubLink
)

// TargetEntry is one output column of a query.
type TargetEntry struct {
	Expr            Expr
	ResNo           int
	ResName         string
	ResSortGroupRef int
	ResJunk         bool
}

// SortGroupClause references a target entry through its ResSortGroupRef.
type SortGroupClause struct {
	TLESortGroupRef int
	Descending      bool
	NullsFirst      bool
}

// WindowClause is a WINDOW definition.
type WindowClause struct {
	Name            string
	WinRef          int
	PartitionClause []*SortGroupClause
	OrderClause     []*SortGroupClause
}

// GroupingSetKind distinguishes ROLLUP, CUBE and GROUPING SETS.
type GroupingSetKind int

const (
	GroupingSetSimple GroupingSetKind = iota
	GroupingSetRollup
	GroupingSetCube
	GroupingSetSets
)

// GroupingSet is one element of a GROUP BY with grouping sets.
type GroupingSet struct {
	Kind    GroupingSetKind
	Content []int
}

// LimitOption tells how LIMIT treats ties.
type LimitOption int

const (
	LimitOptionCount LimitOption = iota
	LimitOptionWithTies
)

// SetOperation is UNION, INTERSECT or EXCEPT.
type SetOperation int

const (
	SetOpUnion SetOperation = iota
	SetOpIntersect
	SetOpExcept
)

// SetOperationStmt is the set operation tree of a query.
type SetOperationStmt struct {
	Op  SetOperation
	All bool
}

// CommonTableExpr is a WITH entry.
type CommonTableExpr struct {
	Name      string
	Query     *Query
	Recursive bool
}

// LockStrength is the strength of a row locking clause.
type LockStrength int

const (
	LockForKeyShare LockStrength = iota
	LockForShare
	LockForNoKeyUpdate
	LockForUpdate
)

// RowMarkClause is a FOR UPDATE/SHARE clause applying to one range table entry.
type RowMarkClause struct {
	RTIndex  int
	Strength LockStrength
}

// Query is an analyzed SELECT.
type Query struct {
	RangeTable []*RangeTblEntry
	JoinTree   *FromExpr
	TargetList []*TargetEntry

	GroupClause    []*SortGroupClause
	GroupingSets   []*GroupingSet
	HavingQual     Expr
	SortClause     []*SortGroupClause
	DistinctClause []*SortGroupClause
	HasDistinctOn  bool
	WindowClause   []*WindowClause

	LimitCount  Expr
	LimitOffset Expr
	LimitOption LimitOption

	HasAggs        bool
	HasWindowFuncs bool
	HasSubLinks    bool

	SetOperations *SetOperationStmt
	HasRecursive  bool
	CTEList       []*CommonTableExpr
	RowMarks      []*RowMarkClause
	HasForUpdate  bool
}

// RTFetch returns the range table entry at the 1-based position index.
func (q *Query) RTFetch(index int) *RangeTblEntry {
	return q.RangeTable[index-1]
}

// TargetEntryForRef returns the target entry a SortGroupClause points at.
func (q *Query) TargetEntryForRef(ref int) *TargetEntry {
	for _, te := range q.TargetList {
		if te.ResSortGroupRef == ref {
			return te
		}
	}
	return nil
}

func (*FromExpr) iNode()     {}
func (*JoinExpr) iNode()     {}
func (*RangeTblRef) iNode()  {}
func (*Var) iNode()          {}
func (*Const) iNode()        {}
func (*OpExpr) iNode()       {}
func (*BoolExpr) iNode()     {}
func (*FuncExpr) iNode()     {}
func (*Aggref) iNode()       {}
func (*WindowFunc) iNode()   {}
func (*SubLink) iNode()      {}
func (*GroupingFunc) iNode() {}
func (*NullTest) iNode()     {}
func (*RelabelType) iNode()  {}

func (*FromExpr) iJoinTreeNode()    {}
func (*JoinExpr) iJoinTreeNode()    {}
func (*RangeTblRef) iJoinTreeNode() {}

func (*Var) iExpr()          {}
func (*Const) iExpr()        {}
func (*OpExpr) iExpr()       {}
func (*BoolExpr) iExpr()     {}
func (*FuncExpr) iExpr()     {}
func (*Aggref) iExpr()       {}
func (*WindowFunc) iExpr()   {}
func (*SubLink) iExpr()      {}
func (*GroupingFunc) iExpr() {}
func (*NullTest) iExpr()     {}
func (*RelabelType) iExpr()  {}
