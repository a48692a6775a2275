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
	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/querytree"
)

// RTEListProperties summarizes the kinds of relations in a range table.
type RTEListProperties struct {
	HasPostgresLocalTable bool
	HasReferenceTable     bool
	HasCitusLocalTable    bool
	// HasDistributedTable covers hash, range, append and single shard tables.
	HasDistributedTable      bool
	HasDistTableWithShardKey bool
	HasSingleShardDistTable  bool
	HasCitusTable            bool
}

// GetRTEListProperties looks at the relation entries of rangeTable. Nested
// queries are not entered.
func GetRTEListProperties(rangeTable []*querytree.RangeTblEntry, lookup metadata.Lookup) *RTEListProperties {
	props := &RTEListProperties{}
	for _, rte := range rangeTable {
		if rte.Kind != querytree.RTERelation {
			continue
		}
		md, ok := lookup.TableMetadata(rte.RelationID)
		if !ok {
			props.HasPostgresLocalTable = true
			continue
		}
		props.HasCitusTable = true
		switch md.Method {
		case metadata.Reference:
			props.HasReferenceTable = true
		case metadata.CitusLocal:
			props.HasCitusLocalTable = true
		case metadata.SingleShard:
			props.HasDistributedTable = true
			props.HasSingleShardDistTable = true
		case metadata.Hash, metadata.Range, metadata.Append:
			props.HasDistributedTable = true
			props.HasDistTableWithShardKey = md.HasDistributionKey() || props.HasDistTableWithShardKey
		}
	}
	return props
}

// GetRTEListPropertiesForQuery is GetRTEListProperties over the range table
// of q.
func GetRTEListPropertiesForQuery(q *querytree.Query, lookup metadata.Lookup) *RTEListProperties {
	return GetRTEListProperties(q.RangeTable, lookup)
}

// HasLocalTable reports whether a table that lives only on the coordinator
// is present.
func (p *RTEListProperties) HasLocalTable() bool {
	return p.HasPostgresLocalTable || p.HasCitusLocalTable
}

// HasDistributedOrReferenceTable reports whether a table whose rows are on
// the workers is present.
func (p *RTEListProperties) HasDistributedOrReferenceTable() bool {
	return p.HasDistributedTable || p.HasReferenceTable
}

// DistributedRelationIDs returns the cluster managed relations of the query
// and of every query nested in it, each once, in order of first appearance.
func DistributedRelationIDs(q *querytree.Query, lookup metadata.Lookup) []querytree.RelationID {
	var ids []querytree.RelationID
	seen := map[querytree.RelationID]bool{}
	for _, rte := range querytree.RangeTableRelations(q) {
		if seen[rte.RelationID] || !metadata.IsCitusTable(lookup, rte.RelationID) {
			continue
		}
		seen[rte.RelationID] = true
		ids = append(ids, rte.RelationID)
	}
	return ids
}

// IsCitusTableRTE reports whether rte is a relation managed by the cluster.
func IsCitusTableRTE(rte *querytree.RangeTblEntry, lookup metadata.Lookup) bool {
	return rte.Kind == querytree.RTERelation && metadata.IsCitusTable(lookup, rte.RelationID)
}

// IsDistributedTableRTE reports whether rte is a distributed relation.
// Reference tables do not count.
func IsDistributedTableRTE(rte *querytree.RangeTblEntry, lookup metadata.Lookup) bool {
	return rte.Kind == querytree.RTERelation && metadata.IsDistributedTable(lookup, rte.RelationID)
}

// IsReferenceTableRTE reports whether rte is a reference table.
func IsReferenceTableRTE(rte *querytree.RangeTblEntry, lookup metadata.Lookup) bool {
	return rte.Kind == querytree.RTERelation && metadata.IsReferenceTable(lookup, rte.RelationID)
}

// IsDistributedOrReferenceTableRTE reports whether rte is a distributed or
// a reference table.
func IsDistributedOrReferenceTableRTE(rte *querytree.RangeTblEntry, lookup metadata.Lookup) bool {
	return IsDistributedTableRTE(rte, lookup) || IsReferenceTableRTE(rte, lookup)
}

// IsTableWithDistKeyRTE reports whether rte is sharded on a column.
func IsTableWithDistKeyRTE(rte *querytree.RangeTblEntry, lookup metadata.Lookup) bool {
	return rte.Kind == querytree.RTERelation && metadata.HasDistributionKey(lookup, rte.RelationID)
}

// FindReferencedTableColumn follows a column reference of q down through
// range table sub-queries to the relation column it reads. It returns nils
// when expr is not a plain column of the current query level or does not end
// at a relation.
func FindReferencedTableColumn(expr querytree.Expr, q *querytree.Query) (*querytree.Var, *querytree.RangeTblEntry) {
	column, ok := querytree.StripImplicitCoercions(expr).(*querytree.Var)
	if !ok || column.LevelsUp > 0 || column.VarNo < 1 || column.VarNo > len(q.RangeTable) {
		return nil, nil
	}
	rte := q.RTFetch(column.VarNo)
	switch rte.Kind {
	case querytree.RTERelation:
		return column, rte
	case querytree.RTESubquery:
		for _, te := range rte.Subquery.TargetList {
			if te.ResNo == column.VarAttNo {
				return FindReferencedTableColumn(te.Expr, rte.Subquery)
			}
		}
	}
	return nil, nil
}

// IsPartitionColumn reports whether expr reads the distribution column of a
// table.
func IsPartitionColumn(expr querytree.Expr, q *querytree.Query, lookup metadata.Lookup) bool {
	column, rte := FindReferencedTableColumn(expr, q)
	if column == nil {
		return false
	}
	partitionColumn := metadata.PartitionColumn(lookup, rte.RelationID, column.VarNo)
	return partitionColumn != nil && partitionColumn.VarAttNo == column.VarAttNo
}

// TargetListOnPartitionColumn reports whether one of the target entries is
// the distribution column of a table. Tables without a distribution key and
// append tables are ignored. A query without any table sharded on a column
// is considered to be on the partition column.
func TargetListOnPartitionColumn(q *querytree.Query, targets []*querytree.TargetEntry, lookup metadata.Lookup) bool {
	for _, te := range targets {
		column, rte := FindReferencedTableColumn(te.Expr, q)
		if column == nil {
			continue
		}
		if metadata.IsCitusTable(lookup, rte.RelationID) && !metadata.HasDistributionKey(lookup, rte.RelationID) {
			continue
		}
		if metadata.IsCitusTableType(lookup, rte.RelationID, metadata.Append) {
			continue
		}
		if IsPartitionColumn(te.Expr, q, lookup) {
			return true
		}
	}
	for _, rte := range querytree.RangeTableRelations(q) {
		if IsTableWithDistKeyRTE(rte, lookup) {
			return false
		}
	}
	return true
}
