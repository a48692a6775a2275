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
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/vt/metadata"
	"github.com/warmchang/citus/go/vt/multiplan/fixture"
	"github.com/warmchang/citus/go/vt/multiplan/joinorder"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/multiplan/planner"
	"github.com/warmchang/citus/go/vt/vterrors"
)

var (
	explainOptions = struct {
		Fixture string
		Format  string
		Metrics bool
	}{
		Format: "tree",
	}

	// Explain builds the logical plan of a fixture and prints it.
	Explain = &cobra.Command{
		Use:   "explain --fixture <file>",
		Short: "Builds the logical plan of a fixture and prints it.",
		Long: "Builds the logical plan of the query in a fixture file.\n\n" +
			"Joins that need repartitioning are planned when either --enable-repartition-joins or the fixture's enable_repartition_joins is set.\n" +
			"Unsupported queries fail with the reason, followed by DETAIL and HINT lines when there are any.",
		Example: "mlplan explain --fixture go/vt/multiplan/fixture/testdata/colocated_join.yaml --format json",
		Args:    cobra.NoArgs,
		RunE:    commandExplain,
	}
)

var renderers = map[string]func(operators.Node) string{
	"tree": operators.ToTree,
	"json": operators.ToJSON,
}

func commandExplain(cmd *cobra.Command, args []string) error {
	render, ok := renderers[explainOptions.Format]
	if !ok {
		return vterrors.Errorf(codes.InvalidArgument, "unknown format %q, expected tree or json", explainOptions.Format)
	}
	f, err := fixture.Load(explainOptions.Fixture)
	if err != nil {
		return err
	}

	lookup := metadata.NewCached(f.Lookup, metadata.CacheConfig{DefaultExpiration: config.MetadataCacheTTL})
	solver := &joinorder.Sequential{
		Lookup:                 lookup,
		EnableRepartitionJoins: config.EnableRepartitionJoins || f.EnableRepartitionJoins,
		LogJoinOrder:           config.LogJoinOrder,
	}
	builder := planner.NewBuilder(lookup, solver)
	builder.LogPlanTree = config.LogPlanTree

	root, err := builder.BuildPlan(f.Query)
	if err != nil {
		return vterrors.Wrapf(err, "planning %s", explainOptions.Fixture)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render(root))
	if explainOptions.Metrics {
		return writeMetrics(out)
	}
	return nil
}

// writeMetrics prints every non-zero counter of the registry, one per line.
func writeMetrics(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return vterrors.Wrap(err, "gathering metrics")
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %v", name, value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Explain.Flags().StringVar(&explainOptions.Fixture, "fixture", explainOptions.Fixture, "Fixture file holding the tables and the query to plan.")
	Explain.Flags().StringVar(&explainOptions.Format, "format", explainOptions.Format, "Output format of the plan, tree or json.")
	Explain.Flags().BoolVar(&explainOptions.Metrics, "metrics", explainOptions.Metrics, "Print the planner counters after the plan.")
	_ = Explain.MarkFlagRequired("fixture")

	Root.AddCommand(Explain)
}
