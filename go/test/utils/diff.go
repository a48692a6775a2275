/*
Copyright 2020 The Vitess Authors.

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

// Package utils holds helpers shared by tests.
package utils

import (
	"os"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// exportAll lets cmp look at unexported fields too.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// MustMatch fails the test with a (-want +got) diff when want and got differ.
// Unexported fields are compared too.
//
//	utils.MustMatch(t, want, got, "decoded query")
func MustMatch(t *testing.T, want, got any, errMsg ...string) {
	t.Helper()
	if diff := cmp.Diff(want, got, exportAll); diff != "" {
		t.Fatalf("%v: (-want +got)\n%v", errMsg, diff)
	}
}

// MakeTestOutput creates a directory for the output of a test. It is removed
// when the test passes and kept for inspection otherwise.
func MakeTestOutput(t *testing.T, dir, pattern string) string {
	testOutputTempDir, err := os.MkdirTemp(dir, pattern)
	require.NoError(t, err)

	t.Cleanup(func() {
		if !t.Failed() {
			_ = os.RemoveAll(testOutputTempDir)
		} else {
			t.Logf("Errors found in plan tests. The rendered plans are in %s", testOutputTempDir)
		}
	})

	return testOutputTempDir
}
