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

// Package tableset holds immutable sets of range table ids, the way plan
// nodes describe which tables they output.
package tableset

import (
	"fmt"
	"strconv"
	"strings"
)

// TableSet is an immutable set of range table ids. Range table ids start at
// 1. The zero value is the empty set. TableSets can be compared with == and
// used as map keys.
type TableSet words

// Empty returns the empty set.
func Empty() TableSet {
	return ""
}

// Of returns the set of the given ids. Negative ids are ignored.
func Of(ids ...int) TableSet {
	valid := ids[:0:0]
	for _, id := range ids {
		if id >= 0 {
			valid = append(valid, id)
		}
	}
	return TableSet(build(valid...))
}

// Single returns the set holding only id.
func Single(id int) TableSet {
	return Of(id)
}

// With returns a set that also holds id.
func (ts TableSet) With(id int) TableSet {
	if id < 0 {
		return ts
	}
	return TableSet(words(ts).set(id))
}

// Union returns a set holding the members of both sets.
func (ts TableSet) Union(other TableSet) TableSet {
	return TableSet(words(ts).or(words(other)))
}

// Without returns the members of ts that are not in other.
func (ts TableSet) Without(other TableSet) TableSet {
	return TableSet(words(ts).andNot(words(other)))
}

// Contains reports whether id is a member.
func (ts TableSet) Contains(id int) bool {
	return id >= 0 && words(ts).has(id)
}

// IsSubsetOf reports whether every member of ts is in other.
func (ts TableSet) IsSubsetOf(other TableSet) bool {
	return words(ts).subsetOf(words(other))
}

// Overlaps reports whether the sets share a member.
func (ts TableSet) Overlaps(other TableSet) bool {
	return words(ts).overlaps(words(other))
}

// Len returns the number of members.
func (ts TableSet) Len() int {
	return words(ts).popcount()
}

// IsEmpty reports whether the set has no members.
func (ts TableSet) IsEmpty() bool {
	return len(ts) == 0
}

// SingleID returns the only member of the set, or -1 if the set does not
// have exactly one member.
func (ts TableSet) SingleID() int {
	return words(ts).only()
}

// ForEach calls fn with every member in ascending order.
func (ts TableSet) ForEach(fn func(id int)) {
	words(ts).forEach(fn)
}

// IDs returns the members in ascending order.
func (ts TableSet) IDs() []int {
	var ids []int
	ts.ForEach(func(id int) {
		ids = append(ids, id)
	})
	return ids
}

// String renders the set as {1,2,3}.
func (ts TableSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	ts.ForEach(func(id int) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Itoa(id))
	})
	sb.WriteByte('}')
	return sb.String()
}

// Format implements fmt.Formatter so %v and %s print the members instead of
// the raw bytes.
func (ts TableSet) Format(f fmt.State, _ rune) {
	fmt.Fprint(f, ts.String())
}
