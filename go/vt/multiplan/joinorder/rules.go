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

package joinorder

// JoinRuleType names the way two inputs of a join are brought together.
type JoinRuleType int

// This is the list of JoinRuleType values, cheapest first. The sequential
// solver tries them in this order.
const (
	// JoinRuleInvalid marks the first table of a join order, which is not
	// joined to anything.
	JoinRuleInvalid = JoinRuleType(iota)
	// ReferenceJoin joins against a table replicated to every node.
	ReferenceJoin
	// LocalPartitionJoin joins co-located tables on their distribution
	// columns without moving data.
	LocalPartitionJoin
	// SingleHashPartitionJoin repartitions one side by hash to match the
	// distribution of the other.
	SingleHashPartitionJoin
	// SingleRangePartitionJoin repartitions one side by range to match the
	// distribution of the other.
	SingleRangePartitionJoin
	// DualPartitionJoin repartitions both sides on the join column.
	DualPartitionJoin
	// CartesianProductReferenceJoin is a cross product with a replicated
	// table.
	CartesianProductReferenceJoin
	// CartesianProduct is a cross product without a usable join clause.
	CartesianProduct
	// JoinRuleLast is a sentinel, one past the last rule.
	JoinRuleLast
)

var joinRuleName = map[JoinRuleType]string{
	JoinRuleInvalid:               "none",
	ReferenceJoin:                 "reference join",
	LocalPartitionJoin:            "local partition join",
	SingleHashPartitionJoin:       "single hash partition join",
	SingleRangePartitionJoin:      "single range partition join",
	DualPartitionJoin:             "dual partition join",
	CartesianProductReferenceJoin: "cartesian product reference join",
	CartesianProduct:              "cartesian product",
}

func (r JoinRuleType) String() string {
	if name, ok := joinRuleName[r]; ok {
		return name
	}
	return "unknown"
}

// ParseJoinRuleType is the inverse of JoinRuleType.String.
func ParseJoinRuleType(s string) (JoinRuleType, bool) {
	for r, name := range joinRuleName {
		if name == s {
			return r, true
		}
	}
	return JoinRuleInvalid, false
}

// IsRepartition reports whether the rule moves rows between workers on a
// join column.
func (r JoinRuleType) IsRepartition() bool {
	switch r {
	case SingleHashPartitionJoin, SingleRangePartitionJoin, DualPartitionJoin:
		return true
	}
	return false
}

// IsSinglePartition reports whether the rule repartitions exactly one side.
func (r JoinRuleType) IsSinglePartition() bool {
	return r == SingleHashPartitionJoin || r == SingleRangePartitionJoin
}
