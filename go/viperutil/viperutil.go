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

/*
Package viperutil declares configuration values backed by viper.

Each value is declared once with Configure, bound to the flags of a binary
with BindFlags, and read with its Get method. A value resolves, in order of
precedence, from its flag, its environment variables, the config file loaded
with LoadConfig, and finally its default.
*/
package viperutil

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/warmchang/citus/go/vt/vterrors"
)

// registry holds every configured value for the lifetime of the process.
var registry = viper.New()

// Options control how Configure sets up a Value.
type Options[T any] struct {
	// Aliases are additional keys the value answers to.
	Aliases []string
	// FlagName binds the value to a flag in BindFlags. A value without one is
	// never read from flags.
	FlagName string
	// EnvVars are checked, in order, after the flag.
	EnvVars []string
	// Default is used when nothing else sets the value.
	Default T
	// GetFunc reads the value out of a viper. GetFuncForType provides it when
	// unset.
	GetFunc func(v *viper.Viper) func(key string) T
}

// Registerable is the part of a Value that does not depend on its type, so
// values of different types can be bound together.
type Registerable interface {
	Key() string
	// Flag returns the flag of fs bound to the value, or nil when the value
	// has no FlagName.
	Flag(fs *pflag.FlagSet) (*pflag.Flag, error)
}

// Value is a viper backed configuration value.
type Value[T any] interface {
	Registerable

	// Get returns the current value.
	Get() T
	// Set overrides flags, environment and config file.
	Set(v T)
	// Default returns the default of the value.
	Default() T
}

type value[T any] struct {
	key      string
	def      T
	flagName string
	getFunc  func(v *viper.Viper) func(key string) T
	get      func(key string) T
}

var _ Value[bool] = (*value[bool])(nil)

// Configure declares the value stored under key.
func Configure[T any](key string, opts Options[T]) Value[T] {
	getFunc := opts.GetFunc
	if getFunc == nil {
		getFunc = GetFuncForType[T]()
	}

	registry.SetDefault(key, opts.Default)
	for _, alias := range opts.Aliases {
		registry.RegisterAlias(alias, key)
	}
	if len(opts.EnvVars) > 0 {
		_ = registry.BindEnv(append([]string{key}, opts.EnvVars...)...)
	}
	return &value[T]{
		key:      key,
		def:      opts.Default,
		flagName: opts.FlagName,
		getFunc:  getFunc,
		get:      getFunc(registry),
	}
}

func (val *value[T]) Key() string { return val.key }
func (val *value[T]) Default() T  { return val.def }
func (val *value[T]) Get() T      { return val.get(val.key) }

func (val *value[T]) Set(v T) {
	registry.Set(val.key, v)
}

func (val *value[T]) Flag(fs *pflag.FlagSet) (*pflag.Flag, error) {
	if val.flagName == "" {
		return nil, nil
	}
	flag := fs.Lookup(val.flagName)
	if flag == nil {
		return nil, vterrors.Wrapf(ErrNoFlagDefined, "flag %s of key %s", val.flagName, val.key)
	}
	return flag, nil
}

// BindFlags binds values to their flags in fs. It panics when fs lacks the
// flag of a value, so it is called after all flags are defined.
func BindFlags(fs *pflag.FlagSet, values ...Registerable) {
	for _, val := range values {
		flag, err := val.Flag(fs)
		switch {
		case err != nil:
			panic(fmt.Errorf("failed to load flag for %s: %w", val.Key(), err))
		case flag == nil:
			continue
		}

		_ = registry.BindPFlag(val.Key(), flag)
		if flag.Name != val.Key() {
			registry.RegisterAlias(flag.Name, val.Key())
		}
	}
}

// Rebind makes val read from v instead of the process registry until undo is
// called. Tests reach it through vipertest.Stub.
func Rebind[T any](val Value[T], v *viper.Viper) (undo func(), ok bool) {
	impl, ok := val.(*value[T])
	if !ok {
		return func() {}, false
	}
	old := impl.get
	impl.get = impl.getFunc(v)
	return func() { impl.get = old }, true
}

// LoadConfig reads the config file at path, replacing the settings of any
// earlier file. The format follows the file extension. An empty path is a
// no-op.
func LoadConfig(path string) error {
	if path == "" {
		return nil
	}
	registry.SetConfigFile(path)
	if err := registry.ReadInConfig(); err != nil {
		return vterrors.Wrapf(err, "reading config file %s", path)
	}
	return nil
}

// GetFuncForType returns the default getter function for a given type T. It
// panics for types it does not know about; those values must set
// Options.GetFunc.
func GetFuncForType[T any]() func(v *viper.Viper) func(key string) T {
	var (
		t T
		f any
	)

	switch any(t).(type) {
	case bool:
		f = func(v *viper.Viper) func(key string) bool { return v.GetBool }
	case int:
		f = func(v *viper.Viper) func(key string) int { return v.GetInt }
	case int64:
		f = func(v *viper.Viper) func(key string) int64 { return v.GetInt64 }
	case float64:
		f = func(v *viper.Viper) func(key string) float64 { return v.GetFloat64 }
	case string:
		f = func(v *viper.Viper) func(key string) string { return v.GetString }
	case []string:
		f = func(v *viper.Viper) func(key string) []string { return v.GetStringSlice }
	case time.Duration:
		f = func(v *viper.Viper) func(key string) time.Duration { return v.GetDuration }
	default:
		panic(fmt.Sprintf("no default GetFunc for type %T; call Configure with a custom GetFunc", t))
	}

	return f.(func(v *viper.Viper) func(key string) T)
}
