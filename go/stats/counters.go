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

// Package stats holds the counters the planner exports. Every named counter
// is published to expvar, and hooks registered with Register see it too, so
// it can be exported to other backends.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is an expvar.Int with a help string.
type Counter struct {
	i    atomic.Int64
	help string
}

// NewCounter returns a new Counter, published under name unless it is empty.
func NewCounter(name string, help string) *Counter {
	v := &Counter{help: help}
	if name != "" {
		publish(name, v)
	}
	return v
}

// Add adds delta to the counter.
func (v *Counter) Add(delta int64) {
	v.i.Add(delta)
}

// Get returns the value.
func (v *Counter) Get() int64 {
	return v.i.Load()
}

// String implements expvar.Var.
func (v *Counter) String() string {
	return strconv.FormatInt(v.Get(), 10)
}

// Help returns the help string.
func (v *Counter) Help() string {
	return v.help
}

// Counters is a set of integer counters keyed by a label value.
type Counters struct {
	// mu guards the map only, the counters themselves are atomic.
	mu     sync.RWMutex
	counts map[string]*atomic.Int64
	help   string
}

// String implements expvar.Var. Keys are sorted.
func (c *Counters) String() string {
	counts := c.Counts()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %d", k, counts[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

func (c *Counters) counter(name string) *atomic.Int64 {
	c.mu.RLock()
	a, ok := c.counts[name]
	c.mu.RUnlock()
	if ok {
		return a
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another goroutine may have created it meanwhile
	if a, ok = c.counts[name]; !ok {
		a = new(atomic.Int64)
		c.counts[name] = a
	}
	return a
}

// Add adds value to the counter of name.
func (c *Counters) Add(name string, value int64) {
	c.counter(name).Add(value)
}

// Counts returns a snapshot of every counter.
func (c *Counters) Counts() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int64, len(c.counts))
	for k, a := range c.counts {
		counts[k] = a.Load()
	}
	return counts
}

// Help returns the help string.
func (c *Counters) Help() string {
	return c.help
}

// CountersWithLabels are Counters whose keys are the values of one label,
// labelName, when exported to Prometheus.
type CountersWithLabels struct {
	Counters
	labelName string
}

// NewCountersWithLabels returns a new CountersWithLabels, published under
// name unless it is empty. Counters for tags start out at 0.
func NewCountersWithLabels(name string, help string, labelName string, tags ...string) *CountersWithLabels {
	c := &CountersWithLabels{
		Counters: Counters{
			counts: make(map[string]*atomic.Int64, len(tags)),
			help:   help,
		},
		labelName: labelName,
	}
	for _, tag := range tags {
		c.counts[tag] = new(atomic.Int64)
	}
	if name != "" {
		publish(name, c)
	}
	return c
}

// LabelName returns the label name.
func (c *CountersWithLabels) LabelName() string {
	return c.labelName
}
