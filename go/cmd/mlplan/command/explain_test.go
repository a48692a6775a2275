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

package command

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmchang/citus/go/test/utils"
	"github.com/warmchang/citus/go/viperutil"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
)

const testdata = "../../../vt/multiplan/fixture/testdata/"

func TestMain(m *testing.M) {
	utils.VerifyTestMain(m)
}

// execute runs mlplan with args, starting from default flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, fs := range []*pflag.FlagSet{Root.PersistentFlags(), Explain.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			}
		})
	}
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetErr(io.Discard)
	Root.SetArgs(args)
	err := Root.Execute()
	return out.String(), err
}

func TestExplainTree(t *testing.T) {
	out, err := execute(t, "explain", "--fixture", testdata+"colocated_join.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Root")
	assert.Contains(t, out, "Join (local partition join, inner on ($1.1 = $2.1))")
	assert.Contains(t, out, "Table (b rte2 partitioned on $2.1)")
}

func TestExplainJSON(t *testing.T) {
	out, err := execute(t, "explain", "--fixture", testdata+"colocated_join.yaml", "--format", "json")
	require.NoError(t, err)

	var descr operators.OpDescription
	require.NoError(t, json.Unmarshal([]byte(out), &descr))
	assert.Equal(t, "Root", descr.OperatorType)
	require.Len(t, descr.Inputs, 1)
	assert.Equal(t, "ExtendedOp", descr.Inputs[0].OperatorType)
}

func TestExplainRepartition(t *testing.T) {
	fixture := testdata + "repartition_disabled.yaml"

	_, err := execute(t, "explain", "--fixture", fixture)
	require.Error(t, err)
	assert.ErrorContains(t, err, "the query contains a join that requires repartitioning")
	assert.ErrorContains(t, err, "HINT: Set --enable-repartition-joins to enable repartitioning")

	out, err := execute(t, "explain", "--fixture", fixture, "--enable-repartition-joins")
	require.NoError(t, err)
	assert.Contains(t, out, "single hash partition join")
}

func TestExplainConfigFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	empty := write("empty.yaml", "{}\n")
	t.Cleanup(func() {
		require.NoError(t, viperutil.LoadConfig(empty))
	})

	configFile := write("mlplan.yaml", "enable-repartition-joins: true\n")
	out, err := execute(t, "explain", "--fixture", testdata+"repartition_disabled.yaml", "--config-file", configFile)
	require.NoError(t, err)
	assert.Contains(t, out, "single hash partition join")

	_, err = execute(t, "explain", "--fixture", testdata+"colocated_join.yaml", "--config-file", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestExplainMetrics(t *testing.T) {
	out, err := execute(t, "explain", "--fixture", testdata+"colocated_join.yaml", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "mlplan_logical_plans_built ")
	assert.Contains(t, out, `mlplan_logical_plan_join_rules{join_rule="local partition join"}`)

	out, err = execute(t, "explain", "--fixture", testdata+"colocated_join.yaml", "--metrics", "--metrics-namespace", "citus")
	require.NoError(t, err)
	assert.Contains(t, out, "citus_logical_plans_built ")
	assert.NotContains(t, out, "mlplan_")

	out, err = execute(t, "explain", "--fixture", testdata+"colocated_join.yaml")
	require.NoError(t, err)
	assert.NotContains(t, out, "logical_plans_built")
}

func TestExplainErrors(t *testing.T) {
	testcases := []struct {
		name string
		args []string
		err  string
	}{{
		name: "no fixture",
		args: []string{"explain"},
		err:  `required flag(s) "fixture" not set`,
	}, {
		name: "missing fixture",
		args: []string{"explain", "--fixture", testdata + "missing.yaml"},
		err:  "reading fixture",
	}, {
		name: "unknown format",
		args: []string{"explain", "--fixture", testdata + "colocated_join.yaml", "--format", "dot"},
		err:  `unknown format "dot", expected tree or json`,
	}, {
		name: "unsupported query",
		args: []string{"explain", "--fixture", testdata + "union.yaml"},
		err:  "could not run distributed query with UNION, INTERSECT, or EXCEPT",
	}, {
		name: "outer join",
		args: []string{"explain", "--fixture", testdata + "outer_join.yaml"},
		err:  "could not run distributed query with outer joins",
	}, {
		name: "invalid settings",
		args: []string{"explain", "--fixture", testdata + "colocated_join.yaml", "--metadata-cache-ttl", "-1s"},
		err:  "metadata-cache-ttl must not be negative",
	}, {
		name: "positional arguments",
		args: []string{"explain", "--fixture", testdata + "colocated_join.yaml", "extra"},
		err:  `unknown command "extra"`,
	}}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestConfig(t *testing.T) {
	out, err := execute(t, "config", "--metadata-cache-ttl", "1m", "--log-plan-tree")
	require.NoError(t, err)
	assert.Contains(t, out, "metadata_cache_ttl: 60000000000\n")
	assert.Contains(t, out, "log_plan_tree: true\n")
	assert.Contains(t, out, "enable_repartition_joins: false\n")
	assert.Contains(t, out, "metrics_namespace: mlplan\n")

	_, err = execute(t, "config", "--metrics-namespace", "")
	assert.ErrorContains(t, err, "metrics-namespace must be set")
}
