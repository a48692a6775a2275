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

package stats

import (
	"expvar"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warmchang/citus/go/test/utils"
)

func TestCounter(t *testing.T) {
	c := NewCounter("", "help")
	c.Add(3)
	c.Add(2)
	assert.EqualValues(t, 5, c.Get())
	assert.Equal(t, "5", c.String())
	assert.Equal(t, "help", c.Help())
}

func TestCountersWithLabels(t *testing.T) {
	c := NewCountersWithLabels("", "rule counts", "Rule", "local")
	c.Add("dual partition", 2)
	c.Add("local", 1)
	c.Add("dual partition", 1)

	assert.Equal(t, map[string]int64{"dual partition": 3, "local": 1}, c.Counts())
	assert.Equal(t, `{"dual partition": 3, "local": 1}`, c.String())
	assert.Equal(t, "Rule", c.LabelName())
	assert.Equal(t, "rule counts", c.Help())
}

func TestCountersPreCreatedTags(t *testing.T) {
	c := NewCountersWithLabels("", "", "Rule", "local", "dual")
	assert.Equal(t, map[string]int64{"local": 0, "dual": 0}, c.Counts())
}

func TestCountersConcurrentAdd(t *testing.T) {
	c := NewCountersWithLabels("", "", "Rule")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add("local", 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 800, c.Counts()["local"])
	utils.EnsureNoLeaks(t)
}

func TestPublishReplaysToHooks(t *testing.T) {
	NewCounter("StatsTestEarly", "")

	var seen []string
	Register(func(name string, v expvar.Var) {
		seen = append(seen, name)
	})
	NewCounter("StatsTestLate", "")

	assert.Contains(t, seen, "StatsTestEarly")
	assert.Contains(t, seen, "StatsTestLate")
	assert.NotNil(t, expvar.Get("StatsTestLate"))
}
