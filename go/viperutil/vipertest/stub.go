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

// Package vipertest stubs configuration values in tests.
package vipertest

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/warmchang/citus/go/viperutil"
)

// Stub makes val read from v until the returned function is called. It fails
// the test when v already holds a value for the key of val, since that
// usually means the same value was stubbed twice.
func Stub[T any](t *testing.T, v *viper.Viper, val viperutil.Value[T]) func() {
	t.Helper()

	if !assert.False(t, v.InConfig(val.Key()), "value for key %s already stubbed", val.Key()) {
		return func() {}
	}
	undo, ok := viperutil.Rebind(val, v)
	assert.True(t, ok, "value %s does not support stubbing", val.Key())
	return undo
}
