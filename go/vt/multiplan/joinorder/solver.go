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

// Package joinorder decides in which order the tables of a query are joined
// and which join rule each step uses.
package joinorder

import (
	"fmt"
	"strings"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/querytree"
)

//go:generate mockgen -source $GOFILE -destination mock_solver.go -package joinorder

// TableEntry is one range table entry that takes part in a join.
type TableEntry struct {
	RelationID   querytree.RelationID
	RangeTableID int
}

func (t *TableEntry) String() string {
	return fmt.Sprintf("%d@%d", t.RelationID, t.RangeTableID)
}

// JoinOrderNode is one step of a join order: TableEntry is joined to
// everything before it using JoinRuleType.
type JoinOrderNode struct {
	TableEntry   *TableEntry
	JoinRuleType JoinRuleType
	JoinType     querytree.JoinType
	// PartitionColumns are the columns the joined result is known to be
	// distributed on, the first one decides single partition joins.
	PartitionColumns []*querytree.Var
	PartitionMethod  metadata.DistributionMethod
	JoinClauses      []querytree.Expr
	// AnchorTable is the table whose shards the result is aligned with,
	// nil once a repartition or cross product lost the alignment.
	AnchorTable *TableEntry
}

func (n *JoinOrderNode) String() string {
	return fmt.Sprintf("%s[%s]", n.JoinRuleType, n.TableEntry)
}

// Solver produces the join order of a set of tables. The first node of the
// result has JoinRuleInvalid; every later node joins one more table onto the
// previous ones.
type Solver interface {
	JoinOrder(tables []*TableEntry, joinClauses []querytree.Expr) ([]*JoinOrderNode, error)
}

// OuterJoinOrderer is implemented by solvers that place the outer joins of a
// query themselves. Solvers without it are handed the inner join clauses
// only, so queries with outer joins are not planned with them.
type OuterJoinOrderer interface {
	OrdersOuterJoins() bool
}

// FormatJoinOrder renders a join order on one line, e.g.
// "[ 1@1 ][ local partition join 2@2 ]".
func FormatJoinOrder(order []*JoinOrderNode) string {
	var sb strings.Builder
	for _, n := range order {
		sb.WriteString("[ ")
		if n.JoinRuleType != JoinRuleInvalid {
			sb.WriteString(n.JoinRuleType.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(n.TableEntry.String())
		sb.WriteString(" ]")
	}
	return sb.String()
}
