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

package planner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmchang/citus/go/test/utils"
	"github.com/warmchang/citus/go/vt/multiplan/fixture"
	"github.com/warmchang/citus/go/vt/multiplan/joinorder"
	"github.com/warmchang/citus/go/vt/multiplan/operators"
	"github.com/warmchang/citus/go/vt/vterrors"
)

func TestMain(m *testing.M) {
	utils.VerifyTestMain(m)
}

func TestPlanFixtures(t *testing.T) {
	files, err := filepath.Glob("../fixture/testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	outputDir := utils.MakeTestOutput(t, "", "plan_test")

	for _, file := range files {
		f, err := fixture.Load(file)
		require.NoError(t, err)

		t.Run(f.Name, func(t *testing.T) {
			solver := &joinorder.Sequential{Lookup: f.Lookup, EnableRepartitionJoins: f.EnableRepartitionJoins}
			root, err := NewBuilder(f.Lookup, solver).BuildPlan(f.Query)
			if f.Expect.Error != "" {
				require.Error(t, err)
				var derr *vterrors.DeferredError
				if errors.As(err, &derr) {
					assert.Equal(t, f.Expect.Error, derr.Message)
					assert.Equal(t, f.Expect.Hint, derr.Hint)
				} else {
					assert.EqualError(t, err, f.Expect.Error)
				}
				return
			}
			require.NoError(t, err)

			tree := operators.ToTree(root)
			name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".txt"
			require.NoError(t, os.WriteFile(filepath.Join(outputDir, name), []byte(tree), 0o644))
			for _, line := range f.Expect.Plan {
				assert.Contains(t, tree, line)
			}
		})
	}
}
