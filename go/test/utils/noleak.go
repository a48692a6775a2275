/*
Copyright 2023 The Vitess Authors.

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

package utils

import (
	"testing"

	"go.uber.org/goleak"
)

// backgroundGoroutines run for the life of the process on purpose.
var backgroundGoroutines = []goleak.Option{
	goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	// janitors of metadata caches built with a cleanup interval
	goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
}

// VerifyTestMain runs the tests of a package and fails the run when they
// leave goroutines behind. Call it from TestMain.
func VerifyTestMain(m *testing.M) {
	goleak.VerifyTestMain(m, backgroundGoroutines...)
}

// EnsureNoLeaks fails t if goroutines started by it are still running.
// Failed tests are not checked.
func EnsureNoLeaks(t testing.TB) {
	if t.Failed() {
		return
	}
	if err := goleak.Find(backgroundGoroutines...); err != nil {
		t.Fatal(err)
	}
}
