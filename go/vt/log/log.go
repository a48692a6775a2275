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

// Package log provides a thin adapter around glog.
//
// Listeners can subscribe to every message logged through this package,
// which lets tests observe what the planner reports without parsing files.
package log

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
)

// Flush ensures any pending I/O is written.
var Flush = glog.Flush

// Level is the glog verbosity level.
type Level = glog.Level

// Verbose is a boolean type that implements Infof (like Printf) etc.
type Verbose = glog.Verbose

// V returns a Verbose that only logs when the glog verbosity is at least level.
func V(level Level) Verbose {
	return glog.V(level)
}

// Listener receives every message logged through this package.
type Listener interface {
	Listen(level, format string, args ...any)
}

var (
	listenersMu sync.RWMutex
	listeners   []Listener
)

// Subscribe registers a Listener. It returns a function that removes it.
func Subscribe(l Listener) (unsubscribe func()) {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	listeners = append(listeners, l)
	return func() {
		listenersMu.Lock()
		defer listenersMu.Unlock()
		for i, other := range listeners {
			if other == l {
				listeners = append(listeners[:i], listeners[i+1:]...)
				return
			}
		}
	}
}

func notify(level, format string, args ...any) {
	listenersMu.RLock()
	defer listenersMu.RUnlock()
	for _, l := range listeners {
		l.Listen(level, format, args...)
	}
}

// Infof logs at the info level.
func Infof(format string, args ...any) {
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
	notify("info", format, args...)
}

// Warningf logs at the warning level.
func Warningf(format string, args ...any) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
	notify("warning", format, args...)
}

// Errorf logs at the error level.
func Errorf(format string, args ...any) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
	notify("error", format, args...)
}

// RegisterFlags installs log flags on the given FlagSet.
func RegisterFlags(fs *pflag.FlagSet) {
	flagVal := logRotateMaxSize{
		val: strconv.FormatUint(atomic.LoadUint64(&glog.MaxSize), 10),
	}
	fs.Var(&flagVal, "log-rotate-max-size", "size in bytes at which logs are rotated (glog.MaxSize)")
}

// logRotateMaxSize implements pflag.Value and is used to
// try and provide thread-safe access to glog.MaxSize.
type logRotateMaxSize struct {
	val string
}

func (lrms *logRotateMaxSize) Set(s string) error {
	maxSize, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	atomic.StoreUint64(&glog.MaxSize, maxSize)
	lrms.val = s
	return nil
}

func (lrms *logRotateMaxSize) String() string {
	return lrms.val
}

func (lrms *logRotateMaxSize) Type() string {
	return "uint64"
}
