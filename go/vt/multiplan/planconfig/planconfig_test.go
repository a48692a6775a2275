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

package planconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmchang/citus/go/viperutil/vipertest"
)

var defaults = &Config{
	MetadataCacheTTL: 30 * time.Second,
	MetricsNamespace: "mlplan",
}

// resetFlags binds the settings to a flag set nobody parses.
func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		RegisterFlags(pflag.NewFlagSet("reset", pflag.ContinueOnError))
	})
}

func TestCurrentDefaults(t *testing.T) {
	assert.Equal(t, defaults, Current())
}

func TestRegisterFlags(t *testing.T) {
	resetFlags(t)
	fs := pflag.NewFlagSet("mlplan", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--enable-repartition-joins",
		"--log-plan-tree",
		"--metadata-cache-ttl=1m",
		"--metrics-namespace=test",
	}))
	assert.Equal(t, &Config{
		EnableRepartitionJoins: true,
		LogPlanTree:            true,
		MetadataCacheTTL:       time.Minute,
		MetricsNamespace:       "test",
	}, Current())
}

func TestEnvironment(t *testing.T) {
	t.Setenv("MLPLAN_LOG_JOIN_ORDER", "true")
	t.Setenv("MLPLAN_METADATA_CACHE_TTL", "5s")
	cfg := Current()
	assert.True(t, cfg.LogJoinOrder)
	assert.Equal(t, 5*time.Second, cfg.MetadataCacheTTL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	resetFlags(t)
	t.Setenv("MLPLAN_METRICS_NAMESPACE", "env")
	assert.Equal(t, "env", Current().MetricsNamespace)

	fs := pflag.NewFlagSet("mlplan", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--metrics-namespace=flag"}))
	assert.Equal(t, "flag", Current().MetricsNamespace)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("{}\n"), 0o644))
	t.Cleanup(func() {
		_, _ = Load(empty)
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)

	path := filepath.Join(dir, "mlplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enable-repartition-joins: true\nmetrics-namespace: fromfile\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.EnableRepartitionJoins)
	assert.Equal(t, "fromfile", cfg.MetricsNamespace)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("metadata-cache-ttl: -1s\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "metadata-cache-ttl must not be negative")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestStubbed(t *testing.T) {
	v := viper.New()
	v.Set("metrics-namespace", "stubbed")
	undo := vipertest.Stub(t, v, metricsNamespace)
	assert.Equal(t, "stubbed", Current().MetricsNamespace)
	undo()
	assert.Equal(t, defaults.MetricsNamespace, Current().MetricsNamespace)
}

func TestValidate(t *testing.T) {
	testcases := []struct {
		name string
		cfg  Config
		err  string
	}{
		{"defaults", *defaults, ""},
		{"no cache", Config{MetricsNamespace: "x"}, ""},
		{"negative ttl", Config{MetadataCacheTTL: -time.Second, MetricsNamespace: "x"}, "metadata-cache-ttl must not be negative, got -1s"},
		{"no namespace", Config{MetadataCacheTTL: time.Second}, "metrics-namespace must be set"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.err)
		})
	}
}
