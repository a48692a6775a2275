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

package operators

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/warmchang/citus/go/vt/querytree"
)

// OpDescription is the JSON shape of a plan node.
type OpDescription struct {
	OperatorType string
	Variant      string          `json:",omitempty"`
	Other        map[string]any  `json:",omitempty"`
	Inputs       []OpDescription `json:",omitempty"`
}

// ToJSON is a debug only function. It can panic, so do not use this in production code
func ToJSON(n Node) string {
	descr := buildDescriptionTree(n)
	out, err := json.MarshalIndent(descr, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out)
}

func buildDescriptionTree(n Node) OpDescription {
	descr := n.Description()
	for _, in := range Children(n) {
		descr.Inputs = append(descr.Inputs, buildDescriptionTree(in))
	}
	return descr
}

// ToTree renders the plan as an indented tree, one node per line.
func ToTree(n Node) string {
	tree := asTree(n, nil)
	return tree.String()
}

func opDescr(n Node) string {
	typ := n.Type().String()
	if short := n.ShortDescription(); short != "" {
		return fmt.Sprintf("%s (%s)", typ, short)
	}
	return typ
}

func asTree(n Node, root treeprint.Tree) treeprint.Tree {
	txt := opDescr(n)
	var branch treeprint.Tree
	if root == nil {
		branch = treeprint.NewWithRoot(txt)
	} else {
		branch = root.AddBranch(txt)
	}
	for _, child := range Children(n) {
		asTree(child, branch)
	}
	return branch
}

func (r *Root) Description() OpDescription {
	return OpDescription{OperatorType: "Root"}
}

func (r *Root) ShortDescription() string { return "" }

func (t *Table) Description() OpDescription {
	other := map[string]any{
		"RelationID":   t.RelationID,
		"RangeTableID": t.RangeTableID,
	}
	if t.PartitionColumn != nil {
		other["PartitionColumn"] = querytree.String(t.PartitionColumn)
	}
	if t.Alias != nil {
		other["Alias"] = t.Alias.AliasName
	}
	if t.IncludePartitions {
		other["IncludePartitions"] = true
	}
	if t.TableSample != nil {
		other["TableSample"] = t.TableSample.Method
	}
	descr := OpDescription{OperatorType: "Table", Other: other}
	if t.IsSubqueryPlaceholder() {
		descr.Variant = "Subquery"
	}
	return descr
}

func (t *Table) ShortDescription() string {
	if t.IsSubqueryPlaceholder() {
		return "subquery"
	}
	var sb strings.Builder
	if t.ReferenceNames != nil && t.ReferenceNames.AliasName != "" {
		sb.WriteString(t.ReferenceNames.AliasName)
	} else {
		fmt.Fprintf(&sb, "relation %d", t.RelationID)
	}
	fmt.Fprintf(&sb, " rte%d", t.RangeTableID)
	if t.PartitionColumn != nil {
		fmt.Fprintf(&sb, " partitioned on %s", querytree.String(t.PartitionColumn))
	}
	return sb.String()
}

func (c *Collect) Description() OpDescription {
	return OpDescription{OperatorType: "Collect"}
}

func (c *Collect) ShortDescription() string { return "" }

func (s *Select) Description() OpDescription {
	return OpDescription{
		OperatorType: "Select",
		Other:        map[string]any{"SelectClauses": querytree.Strings(s.SelectClauses)},
	}
}

func (s *Select) ShortDescription() string {
	return strings.Join(querytree.Strings(s.SelectClauses), " AND ")
}

func (p *Project) Description() OpDescription {
	return OpDescription{
		OperatorType: "Project",
		Other:        map[string]any{"Columns": columnStrings(p.Columns)},
	}
}

func (p *Project) ShortDescription() string {
	return strings.Join(columnStrings(p.Columns), ", ")
}

func columnStrings(columns []*querytree.Var) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = querytree.String(c)
	}
	return out
}

func (p *Partition) Description() OpDescription {
	other := map[string]any{}
	if p.PartitionColumn != nil {
		other["PartitionColumn"] = querytree.String(p.PartitionColumn)
	}
	if p.SplitPointTableID != 0 {
		other["SplitPointTableID"] = p.SplitPointTableID
	}
	return OpDescription{OperatorType: "Partition", Other: other}
}

func (p *Partition) ShortDescription() string {
	if p.PartitionColumn == nil {
		return ""
	}
	if p.SplitPointTableID != 0 {
		return fmt.Sprintf("%s split on rte%d", querytree.String(p.PartitionColumn), p.SplitPointTableID)
	}
	return querytree.String(p.PartitionColumn)
}

func (e *ExtendedOp) Description() OpDescription {
	other := map[string]any{
		"TargetList": targetStrings(e.TargetList),
	}
	if len(e.GroupClause) > 0 {
		other["GroupBy"] = len(e.GroupClause)
	}
	if len(e.SortClause) > 0 {
		other["OrderBy"] = len(e.SortClause)
	}
	if e.LimitCount != nil {
		other["Limit"] = querytree.String(e.LimitCount)
		if e.LimitOption == querytree.LimitOptionWithTies {
			other["WithTies"] = true
		}
	}
	if e.LimitOffset != nil {
		other["Offset"] = querytree.String(e.LimitOffset)
	}
	if e.HavingQual != nil {
		other["Having"] = querytree.String(e.HavingQual)
	}
	if len(e.DistinctClause) > 0 {
		other["Distinct"] = len(e.DistinctClause)
		if e.HasDistinctOn {
			other["DistinctOn"] = true
		}
	}
	if e.HasWindowFuncs {
		other["WindowClauses"] = len(e.WindowClause)
		other["OnlyPushableWindowFunctions"] = e.OnlyPushableWindowFunctions
	}
	return OpDescription{OperatorType: "ExtendedOp", Other: other}
}

func (e *ExtendedOp) ShortDescription() string {
	return strings.Join(targetStrings(e.TargetList), ", ")
}

func targetStrings(targets []*querytree.TargetEntry) []string {
	var out []string
	for _, te := range targets {
		if te.ResJunk {
			continue
		}
		s := querytree.String(te.Expr)
		if te.ResName != "" {
			s += " AS " + te.ResName
		}
		out = append(out, s)
	}
	return out
}

func (j *Join) Description() OpDescription {
	other := map[string]any{}
	if len(j.JoinClauses) > 0 {
		other["JoinClauses"] = querytree.Strings(j.JoinClauses)
	}
	return OpDescription{
		OperatorType: "Join",
		Variant:      j.JoinRuleType.String(),
		Other:        other,
	}
}

func (j *Join) ShortDescription() string {
	s := fmt.Sprintf("%s, %s", j.JoinRuleType, j.JoinType)
	if len(j.JoinClauses) > 0 {
		s += " on " + strings.Join(querytree.Strings(j.JoinClauses), " AND ")
	}
	return s
}

func (c *CartesianProduct) Description() OpDescription {
	return OpDescription{OperatorType: "CartesianProduct"}
}

func (c *CartesianProduct) ShortDescription() string { return "" }
