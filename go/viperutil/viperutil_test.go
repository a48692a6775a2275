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

package viperutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureDefault(t *testing.T) {
	val := Configure("viperutil.test.default", Options[time.Duration]{Default: time.Minute})
	assert.Equal(t, time.Minute, val.Default())
	assert.Equal(t, time.Minute, val.Get())

	val.Set(time.Second)
	assert.Equal(t, time.Second, val.Get())
}

func TestBindFlags(t *testing.T) {
	val := Configure("viperutil.test.flag", Options[int]{FlagName: "test-flag", Default: 3})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("test-flag", val.Default(), "")
	BindFlags(fs, val)
	require.NoError(t, fs.Parse([]string{"--test-flag=7"}))
	assert.Equal(t, 7, val.Get())
}

func TestBindFlagsUndefined(t *testing.T) {
	val := Configure("viperutil.test.missing", Options[bool]{FlagName: "missing"})
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	assert.Panics(t, func() { BindFlags(fs, val) })

	_, err := val.Flag(fs)
	assert.ErrorIs(t, err, ErrNoFlagDefined)
}

func TestEnvVars(t *testing.T) {
	t.Setenv("VIPERUTIL_TEST_ENV", "from-env")
	val := Configure("viperutil.test.env", Options[string]{
		EnvVars: []string{"VIPERUTIL_TEST_ENV"},
		Default: "default",
	})
	assert.Equal(t, "from-env", val.Get())
}

func TestLoadConfig(t *testing.T) {
	require.NoError(t, LoadConfig(""))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viperutil_file:\n  names: [a, b]\n"), 0o644))

	val := Configure("viperutil_file.names", Options[[]string]{})
	require.NoError(t, LoadConfig(path))
	assert.Equal(t, []string{"a", "b"}, val.Get())

	err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestGetFuncForTypeUnknown(t *testing.T) {
	type custom struct{}
	assert.Panics(t, func() { GetFuncForType[custom]() })
}

func TestAliases(t *testing.T) {
	val := Configure("viperutil.test.aliased", Options[string]{Aliases: []string{"viperutil.test.old_name"}})
	registry.Set("viperutil.test.old_name", "via alias")
	assert.Equal(t, "via alias", val.Get())
}

func TestRebind(t *testing.T) {
	val := Configure("viperutil.test.rebind", Options[int]{Default: 1})
	v := viper.New()
	v.Set("viperutil.test.rebind", 2)

	undo, ok := Rebind(val, v)
	require.True(t, ok)
	assert.Equal(t, 2, val.Get())
	undo()
	assert.Equal(t, 1, val.Get())
}
