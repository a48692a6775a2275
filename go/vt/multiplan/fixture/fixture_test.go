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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmchang/citus/go/test/utils"
	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/querytree"
)

const schema = `
tables:
  - {id: 100, name: a, method: hash, distribution_column: 1, colocation_id: 1}
  - {name: r, method: Reference}
  - {name: l, method: local}
  - {name: t, method: range, distribution_column: 2, distribution_column_type: text}
`

func TestParseSchema(t *testing.T) {
	f, err := Parse([]byte(schema + `
query:
  range_table: [{table: a}, {table: r}, {table: l}, {table: t}]
  from: [{ref: 1}]
  targets: [{expr: {var: $1.1}}]
`))
	require.NoError(t, err)

	utils.MustMatch(t, []*metadata.TableMetadata{{
		RelationID:             100,
		Name:                   "a",
		Method:                 metadata.Hash,
		DistributionColumn:     1,
		DistributionColumnType: querytree.Int4Type,
		ColocationID:           1,
	}, {
		RelationID: firstRelationID + 1,
		Name:       "r",
		Method:     metadata.Reference,
	}, {
		RelationID:             firstRelationID + 3,
		Name:                   "t",
		Method:                 metadata.Range,
		DistributionColumn:     2,
		DistributionColumnType: querytree.TextType,
	}}, f.Lookup.Tables())

	ids := make([]querytree.RelationID, 0, len(f.Query.RangeTable))
	for _, rte := range f.Query.RangeTable {
		ids = append(ids, rte.RelationID)
	}
	assert.Equal(t, []querytree.RelationID{100, firstRelationID + 1, firstRelationID + 2, firstRelationID + 3}, ids)
	_, ok := f.Lookup.TableMetadata(firstRelationID + 2)
	assert.False(t, ok, "local tables have no metadata")
}

func TestParseQuery(t *testing.T) {
	f, err := Parse([]byte(schema + `
enable_repartition_joins: true
query:
  range_table:
    - {table: a, alias: x}
    - {table: r}
  from:
    - join:
        type: left
        left: {ref: 1}
        right: {ref: 2}
        "on": {op: "=", args: [{var: $1.1}, {var: "2.1"}]}
  where:
    and:
      - {op: ">", args: [{var: $1.2}, {const: 5}]}
      - {op: "<", args: [{var: $1.3, type: float8}, {const: 2.5}]}
      - {op: "=", args: [{var: $2.2, type: text}, {const: "x"}]}
      - {is_null: {var: $1.4}}
  targets:
    - {expr: {var: $1.1}, name: k}
    - {expr: {agg: sum, args: [{var: $1.2}]}, name: total}
  group_by: [1]
  order_by: [{target: 2, desc: true}]
  limit: {const: 10}
`))
	require.NoError(t, err)
	assert.True(t, f.EnableRepartitionJoins)

	a := &querytree.RangeTblEntry{
		Kind:       querytree.RTERelation,
		RelationID: 100,
		Alias:      &querytree.Alias{AliasName: "x"},
		ERef:       &querytree.Alias{AliasName: "x"},
	}
	r := &querytree.RangeTblEntry{
		Kind:       querytree.RTERelation,
		RelationID: firstRelationID + 1,
		ERef:       &querytree.Alias{AliasName: "r"},
	}
	int4 := func(varno, attno int) *querytree.Var {
		return &querytree.Var{VarNo: varno, VarAttNo: attno, VarType: querytree.Int4Type}
	}
	boolOp := func(op string, args ...querytree.Expr) *querytree.OpExpr {
		return &querytree.OpExpr{Operator: op, Args: args, ResultType: querytree.BoolType}
	}
	want := &querytree.Query{
		RangeTable: []*querytree.RangeTblEntry{a, r},
		JoinTree: &querytree.FromExpr{
			FromList: []querytree.JoinTreeNode{&querytree.JoinExpr{
				JoinType: querytree.JoinLeft,
				Larg:     &querytree.RangeTblRef{RTIndex: 1},
				Rarg:     &querytree.RangeTblRef{RTIndex: 2},
				Quals:    boolOp("=", int4(1, 1), int4(2, 1)),
			}},
			Quals: &querytree.BoolExpr{BoolOp: querytree.AndExpr, Args: []querytree.Expr{
				boolOp(">", int4(1, 2), &querytree.Const{ConstType: querytree.Int4Type, Value: int64(5)}),
				boolOp("<",
					&querytree.Var{VarNo: 1, VarAttNo: 3, VarType: querytree.Float8Type},
					&querytree.Const{ConstType: querytree.Float8Type, Value: 2.5}),
				boolOp("=",
					&querytree.Var{VarNo: 2, VarAttNo: 2, VarType: querytree.TextType},
					&querytree.Const{ConstType: querytree.TextType, Value: "x"}),
				&querytree.NullTest{Arg: int4(1, 4), IsNull: true},
			}},
		},
		TargetList: []*querytree.TargetEntry{
			{Expr: int4(1, 1), ResNo: 1, ResName: "k", ResSortGroupRef: 1},
			{Expr: &querytree.Aggref{AggName: "sum", Args: []querytree.Expr{int4(1, 2)}}, ResNo: 2, ResName: "total", ResSortGroupRef: 2},
		},
		GroupClause: []*querytree.SortGroupClause{{TLESortGroupRef: 1}},
		SortClause:  []*querytree.SortGroupClause{{TLESortGroupRef: 2, Descending: true}},
		LimitCount:  &querytree.Const{ConstType: querytree.Int4Type, Value: int64(10)},
		HasAggs:     true,
	}
	utils.MustMatch(t, want, f.Query, "decoded query")
}

func TestParseNestedQueries(t *testing.T) {
	f, err := Parse([]byte(schema + `
query:
  ctes:
    - name: w
      query:
        range_table: [{table: r}]
        from: [{ref: 1}]
        targets: [{expr: {var: $1.1}}]
  recursive: true
  set_operation: Union
  for_update: [1]
  range_table:
    - kind: subquery
      alias: s
      subquery:
        range_table: [{table: a}]
        from: [{ref: 1}]
        targets: [{expr: {var: $1.1}, name: k}]
    - {kind: tablefunc, json_table: true}
  from: [{ref: 1}, {ref: 2}]
  where:
    or:
      - {exists: {range_table: [{table: l}], from: [{ref: 1}], targets: [{expr: {const: 1}}]}}
      - {in: {range_table: [{table: t}], from: [{ref: 1}], targets: [{expr: {var: $1.2}}]}, args: [{var: $1.1}]}
  targets:
    - {expr: {window: row_number}, name: n}
    - {expr: {grouping: [{var: $1.1}]}, name: g}
  windows: [{name: w1, partition_by: [1]}]
  grouping_sets: [{kind: rollup, content: [1]}]
`))
	require.NoError(t, err)
	q := f.Query

	require.Len(t, q.CTEList, 1)
	assert.Equal(t, "w", q.CTEList[0].Name)
	assert.True(t, q.HasRecursive)
	require.NotNil(t, q.SetOperations)
	assert.Equal(t, querytree.SetOpUnion, q.SetOperations.Op)
	assert.True(t, q.HasForUpdate)

	require.Len(t, q.RangeTable, 2)
	assert.Equal(t, querytree.RTESubquery, q.RangeTable[0].Kind)
	require.NotNil(t, q.RangeTable[0].Subquery)
	assert.Equal(t, "k", q.RangeTable[0].Subquery.TargetList[0].ResName)
	assert.True(t, q.RangeTable[1].TableFunc.IsJSONTable)

	assert.True(t, q.HasSubLinks)
	assert.True(t, q.HasWindowFuncs)
	assert.False(t, q.HasAggs)
	assert.Equal(t, "(EXISTS(<subquery>) OR ($1.1 = ANY(<subquery>)))", querytree.String(q.JoinTree.Quals))
	assert.Equal(t, "row_number() OVER w0", querytree.String(q.TargetList[0].Expr))
	assert.Equal(t, "GROUPING($1.1)", querytree.String(q.TargetList[1].Expr))

	require.Len(t, q.WindowClause, 1)
	assert.Equal(t, 1, q.WindowClause[0].WinRef)
	assert.Equal(t, 1, q.WindowClause[0].PartitionClause[0].TLESortGroupRef)
	require.Len(t, q.GroupingSets, 1)
	assert.Equal(t, querytree.GroupingSetRollup, q.GroupingSets[0].Kind)
}

func TestParseErrors(t *testing.T) {
	testcases := []struct {
		name string
		yaml string
		err  string
	}{{
		name: "no query",
		yaml: schema,
		err:  "fixture has no query",
	}, {
		name: "unknown method",
		yaml: "tables: [{name: a, method: modulo}]\nquery: {}",
		err:  `table a: unknown distribution method "modulo"`,
	}, {
		name: "duplicate table",
		yaml: "tables: [{name: a, method: local}, {name: a, method: local}]\nquery: {}",
		err:  "duplicate table a",
	}, {
		name: "unknown table",
		yaml: schema + "query: {range_table: [{table: nope}]}",
		err:  `range table entry 1: unknown table "nope"`,
	}, {
		name: "reference out of range",
		yaml: schema + "query: {range_table: [{table: a}], from: [{ref: 2}]}",
		err:  "reference to range table entry 2 out of 1",
	}, {
		name: "bad column",
		yaml: schema + "query: {range_table: [{table: a}], from: [{ref: 1}], targets: [{expr: {var: a.b}}]}",
		err:  `target 1: bad column reference "a.b"`,
	}, {
		name: "empty expression",
		yaml: schema + "query: {range_table: [{table: a}], from: [{ref: 1}], where: {type: int4}}",
		err:  "where: empty expression",
	}, {
		name: "unknown join type",
		yaml: schema + "query: {range_table: [{table: a}], from: [{join: {type: sideways, left: {ref: 1}, right: {ref: 1}}}]}",
		err:  `unknown join type "sideways"`,
	}, {
		name: "group by a missing target",
		yaml: schema + "query: {range_table: [{table: a}], from: [{ref: 1}], group_by: [3]}",
		err:  "group by: no target 3",
	}, {
		name: "not yaml",
		yaml: "query: [",
		err:  "decoding fixture",
	}}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestLoadTestdata(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		f, err := Load(file)
		require.NoError(t, err, file)
		assert.NotEmpty(t, f.Name, file)
		assert.True(t, len(f.Expect.Plan) > 0 || f.Expect.Error != "", "%s expects nothing", file)
	}

	_, err = Load("testdata/missing.yaml")
	assert.ErrorContains(t, err, "reading fixture testdata/missing.yaml")
}
