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

// Package planconfig holds the settings of the logical planner and the
// binaries embedding it. Each setting can come from a flag, an MLPLAN_
// environment variable or a config file, in that order of precedence.
package planconfig

import (
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc/codes"

	"github.com/warmchang/citus/go/viperutil"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// EnvPrefix prefixes the environment variable of every setting.
const EnvPrefix = "MLPLAN_"

var (
	enableRepartitionJoins = viperutil.Configure(
		"enable-repartition-joins",
		viperutil.Options[bool]{
			FlagName: "enable-repartition-joins",
			EnvVars:  []string{EnvPrefix + "ENABLE_REPARTITION_JOINS"},
		},
	)
	logPlanTree = viperutil.Configure(
		"log-plan-tree",
		viperutil.Options[bool]{
			FlagName: "log-plan-tree",
			EnvVars:  []string{EnvPrefix + "LOG_PLAN_TREE"},
		},
	)
	logJoinOrder = viperutil.Configure(
		"log-join-order",
		viperutil.Options[bool]{
			FlagName: "log-join-order",
			EnvVars:  []string{EnvPrefix + "LOG_JOIN_ORDER"},
		},
	)
	metadataCacheTTL = viperutil.Configure(
		"metadata-cache-ttl",
		viperutil.Options[time.Duration]{
			FlagName: "metadata-cache-ttl",
			EnvVars:  []string{EnvPrefix + "METADATA_CACHE_TTL"},
			Default:  30 * time.Second,
		},
	)
	metricsNamespace = viperutil.Configure(
		"metrics-namespace",
		viperutil.Options[string]{
			FlagName: "metrics-namespace",
			EnvVars:  []string{EnvPrefix + "METRICS_NAMESPACE"},
			Default:  "mlplan",
		},
	)
)

// Config is a snapshot of the planner settings.
type Config struct {
	// EnableRepartitionJoins allows joins that move rows between workers.
	EnableRepartitionJoins bool `json:"enable_repartition_joins"`
	LogPlanTree            bool `json:"log_plan_tree"`
	LogJoinOrder           bool `json:"log_join_order"`
	// MetadataCacheTTL is how long distribution metadata is cached.
	MetadataCacheTTL time.Duration `json:"metadata_cache_ttl"`
	MetricsNamespace string        `json:"metrics_namespace"`
}

// RegisterFlags installs the planner flags on fs and binds them.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool("enable-repartition-joins", enableRepartitionJoins.Default(), "Allow joins that repartition tables on the join column.")
	fs.Bool("log-plan-tree", logPlanTree.Default(), "Log every logical plan built.")
	fs.Bool("log-join-order", logJoinOrder.Default(), "Log the join order picked for every query.")
	fs.Duration("metadata-cache-ttl", metadataCacheTTL.Default(), "How long to cache distribution metadata.")
	fs.String("metrics-namespace", metricsNamespace.Default(), "Namespace of the exported metrics.")

	viperutil.BindFlags(fs,
		enableRepartitionJoins,
		logPlanTree,
		logJoinOrder,
		metadataCacheTTL,
		metricsNamespace,
	)
}

// Load reads configFile, if set, and returns the resulting settings.
func Load(configFile string) (*Config, error) {
	if err := viperutil.LoadConfig(configFile); err != nil {
		return nil, err
	}
	cfg := Current()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Current returns the settings as they are now.
func Current() *Config {
	return &Config{
		EnableRepartitionJoins: enableRepartitionJoins.Get(),
		LogPlanTree:            logPlanTree.Get(),
		LogJoinOrder:           logJoinOrder.Get(),
		MetadataCacheTTL:       metadataCacheTTL.Get(),
		MetricsNamespace:       metricsNamespace.Get(),
	}
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if c.MetadataCacheTTL < 0 {
		return vterrors.Errorf(codes.InvalidArgument, "metadata-cache-ttl must not be negative, got %v", c.MetadataCacheTTL)
	}
	if c.MetricsNamespace == "" {
		return vterrors.New(codes.InvalidArgument, "metrics-namespace must be set")
	}
	return nil
}
