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
)

// Variable is the minimal interface which each type in this "stats" package
// must implement.
type Variable interface {
	expvar.Var
	// Help returns the description of the variable.
	Help() string
}

// NewVarHook is the type of a hook to export variables in a different way
type NewVarHook func(name string, v expvar.Var)

var (
	varsMu    sync.Mutex
	published []publishedVar
	hooks     []NewVarHook
)

type publishedVar struct {
	name string
	v    expvar.Var
}

// Register allows you to register a callback function
// that will be called whenever a new stats variable gets
// created. Variables published before the hook is registered
// are replayed to it immediately.
func Register(nvh NewVarHook) {
	varsMu.Lock()
	defer varsMu.Unlock()
	hooks = append(hooks, nvh)
	for _, pv := range published {
		nvh(pv.name, pv.v)
	}
}

func publish(name string, v expvar.Var) {
	varsMu.Lock()
	defer varsMu.Unlock()
	expvar.Publish(name, v)
	published = append(published, publishedVar{name: name, v: v})
	for _, hook := range hooks {
		hook(name, v)
	}
}
