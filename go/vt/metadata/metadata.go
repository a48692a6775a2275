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

// Package metadata describes how relations are distributed across the
// cluster. The planner only reads it, through the Lookup interface.
package metadata

import (
	"sort"
	"strings"

	"github.com/warmchang/citus/go/vt/querytree"
)

// DistributionMethod is how the rows of a table are placed on the workers.
type DistributionMethod int

const (
	// Hash tables are sharded by the hash of their distribution column.
	Hash DistributionMethod = iota + 1
	// Range tables are sharded by ranges of their distribution column.
	Range
	// Append tables have shards with loosely defined column ranges.
	Append
	// SingleShard tables are distributed but keep all rows in one shard.
	SingleShard
	// Reference tables are replicated to every node.
	Reference
	// CitusLocal tables are known to the cluster but live on the coordinator.
	CitusLocal
)

var methodNames = map[DistributionMethod]string{
	Hash:        "hash",
	Range:       "range",
	Append:      "append",
	SingleShard: "single_shard",
	Reference:   "reference",
	CitusLocal:  "citus_local",
}

func (m DistributionMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseDistributionMethod is the inverse of DistributionMethod.String. It is
// case insensitive.
func ParseDistributionMethod(s string) (DistributionMethod, bool) {
	s = strings.ToLower(s)
	for m, name := range methodNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}

// TableMetadata is what the cluster knows about one relation.
type TableMetadata struct {
	RelationID querytree.RelationID
	Name       string
	Method     DistributionMethod
	// DistributionColumn is the attribute number of the distribution
	// column, 0 for tables without one.
	DistributionColumn     int
	DistributionColumnType querytree.TypeID
	ColocationID           uint32
}

// HasDistributionKey reports whether the table is sharded on a column.
func (t *TableMetadata) HasDistributionKey() bool {
	switch t.Method {
	case Hash, Range, Append:
		return t.DistributionColumn > 0
	}
	return false
}

// IsDistributed reports whether the table's rows are spread over shards, as
// opposed to replicated or local.
func (t *TableMetadata) IsDistributed() bool {
	switch t.Method {
	case Hash, Range, Append, SingleShard:
		return true
	}
	return false
}

// Lookup returns the metadata of a relation. The boolean is false for
// relations the cluster does not manage, i.e. plain local tables.
type Lookup interface {
	TableMetadata(relationID querytree.RelationID) (*TableMetadata, bool)
}

// IsCitusTable reports whether the cluster manages the relation.
func IsCitusTable(l Lookup, relationID querytree.RelationID) bool {
	_, ok := l.TableMetadata(relationID)
	return ok
}

// IsCitusTableType reports whether the relation is managed with one of the
// given methods.
func IsCitusTableType(l Lookup, relationID querytree.RelationID, methods ...DistributionMethod) bool {
	md, ok := l.TableMetadata(relationID)
	if !ok {
		return false
	}
	for _, m := range methods {
		if md.Method == m {
			return true
		}
	}
	return false
}

// IsReferenceTable reports whether the relation is replicated everywhere.
func IsReferenceTable(l Lookup, relationID querytree.RelationID) bool {
	return IsCitusTableType(l, relationID, Reference)
}

// IsDistributedTable reports whether the relation is sharded.
func IsDistributedTable(l Lookup, relationID querytree.RelationID) bool {
	md, ok := l.TableMetadata(relationID)
	return ok && md.IsDistributed()
}

// HasDistributionKey reports whether the relation is sharded on a column.
func HasDistributionKey(l Lookup, relationID querytree.RelationID) bool {
	md, ok := l.TableMetadata(relationID)
	return ok && md.HasDistributionKey()
}

// ColocationID returns the colocation group of the relation, 0 if none.
func ColocationID(l Lookup, relationID querytree.RelationID) uint32 {
	if md, ok := l.TableMetadata(relationID); ok {
		return md.ColocationID
	}
	return 0
}

// PartitionColumn builds a column reference to the relation's distribution
// column as seen from range table position rtIndex. It returns nil when the
// relation has no distribution column.
func PartitionColumn(l Lookup, relationID querytree.RelationID, rtIndex int) *querytree.Var {
	md, ok := l.TableMetadata(relationID)
	if !ok || !md.HasDistributionKey() {
		return nil
	}
	return &querytree.Var{
		VarNo:    rtIndex,
		VarAttNo: md.DistributionColumn,
		VarType:  md.DistributionColumnType,
	}
}

// Static is an in-memory Lookup. It is not safe for concurrent mutation, but
// concurrent reads are fine once it is populated.
type Static struct {
	tables map[querytree.RelationID]*TableMetadata
}

var _ Lookup = (*Static)(nil)

// NewStatic returns a Static lookup holding the given tables.
func NewStatic(tables ...*TableMetadata) *Static {
	s := &Static{tables: make(map[querytree.RelationID]*TableMetadata, len(tables))}
	for _, t := range tables {
		s.Add(t)
	}
	return s
}

// Add registers a table, replacing any previous entry with the same id.
func (s *Static) Add(t *TableMetadata) {
	s.tables[t.RelationID] = t
}

// TableMetadata implements Lookup.
func (s *Static) TableMetadata(relationID querytree.RelationID) (*TableMetadata, bool) {
	t, ok := s.tables[relationID]
	return t, ok
}

// ByName finds a table by name.
func (s *Static) ByName(name string) (*TableMetadata, bool) {
	for _, t := range s.tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Tables returns every table ordered by relation id.
func (s *Static) Tables() []*TableMetadata {
	out := make([]*TableMetadata, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelationID < out[j].RelationID })
	return out
}
