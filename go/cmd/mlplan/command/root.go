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
	"flag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/warmchang/citus/go/stats/prometheusbackend"
	"github.com/warmchang/citus/go/vt/log"
	"github.com/warmchang/citus/go/vt/multiplan/planconfig"
)

var (
	configFile string

	// config and registry are set up before any subcommand runs.
	config   *planconfig.Config
	registry *prometheus.Registry

	Root = &cobra.Command{
		Use:   "mlplan",
		Short: "mlplan builds distributed logical plans for analyzed queries.",
		Long: "`mlplan` runs the distributed logical planner outside of the database.\n\n" +
			"Queries are read from YAML fixtures describing the distribution of the tables involved and the analyzed query tree.\n" +
			"Settings come from flags, `MLPLAN_` environment variables and an optional config file, in that order of precedence.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := planconfig.Load(configFile)
			if err != nil {
				return err
			}
			config = cfg
			registry = prometheus.NewRegistry()
			prometheusbackend.Init(cfg.MetricsNamespace, registry)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}
)

func init() {
	Root.PersistentFlags().StringVar(&configFile, "config-file", configFile, "Path to a YAML, JSON or TOML file with planner settings.")
	planconfig.RegisterFlags(Root.PersistentFlags())
	log.RegisterFlags(Root.PersistentFlags())
	Root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}
