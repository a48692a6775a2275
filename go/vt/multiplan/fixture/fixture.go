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

// Package fixture reads planner test cases from YAML: the distribution
// metadata of a handful of tables, an analyzed query over them and what the
// plan is expected to look like.
//
// Column references are written "$varno.attno" (the leading $ is optional).
// A minimal fixture:
//
//	tables:
//	  - {id: 100, name: a, method: hash, distribution_column: 1, colocation_id: 1}
//	query:
//	  range_table: [{table: a}]
//	  from: [{ref: 1}]
//	  where: {op: ">", args: [{var: $1.2}, {const: 5}]}
//	  targets: [{expr: {var: $1.2}, name: x}]
package fixture

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"sigs.k8s.io/yaml"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/querytree"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// LocalMethod marks a table the cluster does not manage. It gets a relation
// id but no metadata.
const LocalMethod = "local"

// firstRelationID is assigned to the first table without an explicit id.
const firstRelationID = 16384

// Fixture is one decoded test case.
type Fixture struct {
	Name        string
	Description string
	Lookup      *metadata.Static
	Query       *querytree.Query
	// EnableRepartitionJoins is the setting the case is planned with.
	EnableRepartitionJoins bool
	Expect                 Expect
}

// Expect describes the outcome of planning a fixture.
type Expect struct {
	// Plan lists lines the rendered plan tree must contain.
	Plan []string `json:"plan,omitempty"`
	// Error is the expected error message. A plan is expected when empty.
	Error string `json:"error,omitempty"`
	// Hint is the expected hint of a deferred error.
	Hint string `json:"hint,omitempty"`
}

type fixtureSpec struct {
	Name                   string       `json:"name"`
	Description            string       `json:"description"`
	Tables                 []*tableSpec `json:"tables"`
	Query                  *querySpec   `json:"query"`
	EnableRepartitionJoins bool         `json:"enable_repartition_joins"`
	Expect                 Expect       `json:"expect"`
}

type tableSpec struct {
	ID                     uint32 `json:"id"`
	Name                   string `json:"name"`
	Method                 string `json:"method"`
	DistributionColumn     int    `json:"distribution_column"`
	DistributionColumnType string `json:"distribution_column_type"`
	ColocationID           uint32 `json:"colocation_id"`
}

// Load reads the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vterrors.Wrapf(err, "reading fixture %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, vterrors.Wrapf(err, "fixture %s", path)
	}
	return f, nil
}

// Parse decodes a fixture. Integral numbers become int64 constants, other
// numbers float64.
func Parse(data []byte) (*Fixture, error) {
	var spec fixtureSpec
	if err := yaml.Unmarshal(data, &spec, useNumber); err != nil {
		return nil, vterrors.Wrap(err, "decoding fixture")
	}
	if spec.Query == nil {
		return nil, vterrors.New(codes.InvalidArgument, "fixture has no query")
	}

	d := &decoder{relations: map[string]querytree.RelationID{}}
	lookup, err := d.schema(spec.Tables)
	if err != nil {
		return nil, err
	}
	q, err := d.query(spec.Query)
	if err != nil {
		return nil, err
	}
	return &Fixture{
		Name:                   spec.Name,
		Description:            spec.Description,
		Lookup:                 lookup,
		Query:                  q,
		EnableRepartitionJoins: spec.EnableRepartitionJoins,
		Expect:                 spec.Expect,
	}, nil
}

func useNumber(d *json.Decoder) *json.Decoder {
	d.UseNumber()
	return d
}

// decoder turns specs into metadata and query trees. relations maps table
// names, local ones included, to relation ids.
type decoder struct {
	relations map[string]querytree.RelationID
}

func (d *decoder) schema(tables []*tableSpec) (*metadata.Static, error) {
	lookup := metadata.NewStatic()
	for i, t := range tables {
		if t.Name == "" {
			return nil, vterrors.Errorf(codes.InvalidArgument, "table %d has no name", i+1)
		}
		if _, ok := d.relations[t.Name]; ok {
			return nil, vterrors.Errorf(codes.InvalidArgument, "duplicate table %s", t.Name)
		}
		id := querytree.RelationID(t.ID)
		if id == querytree.InvalidRelationID {
			id = querytree.RelationID(firstRelationID + i)
		}
		d.relations[t.Name] = id
		if t.Method == LocalMethod {
			continue
		}

		method, ok := metadata.ParseDistributionMethod(t.Method)
		if !ok {
			return nil, vterrors.Errorf(codes.InvalidArgument, "table %s: unknown distribution method %q", t.Name, t.Method)
		}
		columnType := querytree.Int4Type
		if t.DistributionColumnType != "" {
			if columnType, ok = parseType(t.DistributionColumnType); !ok {
				return nil, vterrors.Errorf(codes.InvalidArgument, "table %s: unknown type %q", t.Name, t.DistributionColumnType)
			}
		}
		md := &metadata.TableMetadata{
			RelationID:   id,
			Name:         t.Name,
			Method:       method,
			ColocationID: t.ColocationID,
		}
		if t.DistributionColumn > 0 {
			md.DistributionColumn = t.DistributionColumn
			md.DistributionColumnType = columnType
		}
		lookup.Add(md)
	}
	return lookup, nil
}

var typeNames = map[string]querytree.TypeID{
	"bool":    querytree.BoolType,
	"int4":    querytree.Int4Type,
	"int8":    querytree.Int8Type,
	"text":    querytree.TextType,
	"float8":  querytree.Float8Type,
	"numeric": querytree.NumericType,
}

func parseType(name string) (querytree.TypeID, bool) {
	t, ok := typeNames[strings.ToLower(name)]
	return t, ok
}

// parseVar reads "$1.2" or "1.2".
func parseVar(s string) (varno, attno int, err error) {
	no, att, ok := strings.Cut(strings.TrimPrefix(s, "$"), ".")
	if !ok {
		return 0, 0, vterrors.Errorf(codes.InvalidArgument, "bad column reference %q", s)
	}
	if varno, err = strconv.Atoi(no); err != nil {
		return 0, 0, vterrors.Errorf(codes.InvalidArgument, "bad column reference %q", s)
	}
	if attno, err = strconv.Atoi(att); err != nil {
		return 0, 0, vterrors.Errorf(codes.InvalidArgument, "bad column reference %q", s)
	}
	return varno, attno, nil
}
