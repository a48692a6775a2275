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
	"github.com/warmchang/citus/go/stats"
)

var (
	plansBuilt = stats.NewCounter(
		"LogicalPlansBuilt",
		"Logical plans built")
	joinRulesApplied = stats.NewCountersWithLabels(
		"LogicalPlanJoinRules",
		"Join rules applied while building logical plans",
		"JoinRule")
	deferredErrors = stats.NewCountersWithLabels(
		"LogicalPlanDeferredErrors",
		"Queries rejected by the logical planner",
		"Message")
)
