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

// Package operators holds the multi-relational algebra a distributed
// logical plan is expressed in: relational operators extended with the
// Collect and Partition data movement markers.
package operators

import (
	"github.com/warmchang/citus/go/vt/multiplan/joinorder"
	"github.com/warmchang/citus/go/vt/querytree"
)

// NodeType tags the operator a Node is.
type NodeType int

// This is the list of NodeType values.
const (
	InvalidNodeType = NodeType(iota)
	RootNode
	TableNode
	CollectNode
	SelectNode
	ProjectNode
	PartitionNode
	ExtendedOpNode
	JoinNode
	CartesianProductNode
	nodeTypeCount
)

var nodeTypeName = [nodeTypeCount]string{
	InvalidNodeType:      "Invalid",
	RootNode:             "Root",
	TableNode:            "Table",
	CollectNode:          "Collect",
	SelectNode:           "Select",
	ProjectNode:          "Project",
	PartitionNode:        "Partition",
	ExtendedOpNode:       "ExtendedOp",
	JoinNode:             "Join",
	CartesianProductNode: "CartesianProduct",
}

// nodeArity is the number of children of each node type. Every traversal
// goes through this table.
var nodeArity = [nodeTypeCount]int{
	RootNode:             1,
	TableNode:            1,
	CollectNode:          1,
	SelectNode:           1,
	ProjectNode:          1,
	PartitionNode:        1,
	ExtendedOpNode:       1,
	JoinNode:             2,
	CartesianProductNode: 2,
}

func (t NodeType) String() string {
	if t < 0 || t >= nodeTypeCount {
		return "Unknown"
	}
	return nodeTypeName[t]
}

// ParseNodeType is the inverse of NodeType.String.
func ParseNodeType(s string) (NodeType, bool) {
	for t, name := range nodeTypeName {
		if name == s && NodeType(t) != InvalidNodeType {
			return NodeType(t), true
		}
	}
	return InvalidNodeType, false
}

// Node is an operator of the plan tree. Nodes are built bottom up with
// SetChild, SetLeftChild and SetRightChild and never change once the tree is
// handed out under its Root.
type Node interface {
	Type() NodeType
	Description() OpDescription
	ShortDescription() string

	nodeLinks() *links
}

// links holds the tree edges of a node. Only the first arity children are
// used. The parent is a back reference, set whenever the node is attached.
type links struct {
	parent   Node
	children [2]Node
}

func (l *links) nodeLinks() *links { return l }

// Root is the handle of a finished plan tree.
type Root struct {
	links
}

// Table reads one range table entry. A Table with SubqueryRelationID stands
// for a subquery in the FROM clause; its child is the plan of that subquery.
type Table struct {
	links

	RelationID   querytree.RelationID
	RangeTableID int
	// PartitionColumn is the distribution column as seen from this range
	// table entry, nil for tables without one.
	PartitionColumn   *querytree.Var
	Alias             *querytree.Alias
	ReferenceNames    *querytree.Alias
	IncludePartitions bool
	TableSample       *querytree.TableSampleClause
	Subquery          *querytree.Query
}

// Subquery placeholder ids. SubqueryRangeTableID is never a valid range table
// position and is left out of OutputTableIDs.
const (
	SubqueryRelationID   querytree.RelationID = 10000
	SubqueryRangeTableID                      = -1
)

// IsSubqueryPlaceholder reports whether the table stands for a subquery.
func (t *Table) IsSubqueryPlaceholder() bool {
	return t.RelationID == SubqueryRelationID && t.RangeTableID == SubqueryRangeTableID
}

// Collect marks a point where rows are gathered from the workers.
type Collect struct {
	links
}

// Select filters rows with a conjunction of selection clauses.
type Select struct {
	links
	SelectClauses []querytree.Expr
}

// Project keeps the listed columns.
type Project struct {
	links
	Columns []*querytree.Var
}

// Partition marks rows that are redistributed on PartitionColumn before the
// join above it. SplitPointTableID is the table whose shard boundaries the
// rows are split on, 0 for a hash redistribution of both sides.
type Partition struct {
	links
	PartitionColumn   *querytree.Var
	SplitPointTableID int
}

// ExtendedOp holds everything above the joins and filters: the output
// expressions, grouping, ordering, limits, distinct and window clauses. They
// are captured as is; a later stage decides what to push down.
type ExtendedOp struct {
	links

	TargetList     []*querytree.TargetEntry
	GroupClause    []*querytree.SortGroupClause
	SortClause     []*querytree.SortGroupClause
	LimitCount     querytree.Expr
	LimitOffset    querytree.Expr
	LimitOption    querytree.LimitOption
	HavingQual     querytree.Expr
	DistinctClause []*querytree.SortGroupClause
	HasDistinctOn  bool
	HasWindowFuncs bool
	WindowClause   []*querytree.WindowClause
	// OnlyPushableWindowFunctions is set when every window function can be
	// evaluated on the workers.
	OnlyPushableWindowFunctions bool
}

// Join joins its two children with the rule chosen for them.
type Join struct {
	links
	JoinRuleType joinorder.JoinRuleType
	JoinType     querytree.JoinType
	JoinClauses  []querytree.Expr
}

// CartesianProduct joins its two children without a join clause.
type CartesianProduct struct {
	links
}

func (*Root) Type() NodeType             { return RootNode }
func (*Table) Type() NodeType            { return TableNode }
func (*Collect) Type() NodeType          { return CollectNode }
func (*Select) Type() NodeType           { return SelectNode }
func (*Project) Type() NodeType          { return ProjectNode }
func (*Partition) Type() NodeType        { return PartitionNode }
func (*ExtendedOp) Type() NodeType       { return ExtendedOpNode }
func (*Join) Type() NodeType             { return JoinNode }
func (*CartesianProduct) Type() NodeType { return CartesianProductNode }

var (
	_ Node = (*Root)(nil)
	_ Node = (*Table)(nil)
	_ Node = (*Collect)(nil)
	_ Node = (*Select)(nil)
	_ Node = (*Project)(nil)
	_ Node = (*Partition)(nil)
	_ Node = (*ExtendedOp)(nil)
	_ Node = (*Join)(nil)
	_ Node = (*CartesianProduct)(nil)
)
