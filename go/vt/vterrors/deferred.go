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

package vterrors

import (
	"strings"

	"google.golang.org/grpc/codes"
)

// DeferredError describes a problem found while validating a query that has
// not been raised yet. A nil *DeferredError means no problem was found.
type DeferredError struct {
	Code    codes.Code
	State   State
	Message string
	Detail  string
	Hint    string
}

// NewDeferredError returns a DeferredError for an unsupported construct.
func NewDeferredError(code codes.Code, message, detail, hint string) *DeferredError {
	state := Undefined
	if code == codes.Unimplemented {
		state = NotSupportedYet
	}
	return &DeferredError{
		Code:    code,
		State:   state,
		Message: message,
		Detail:  detail,
		Hint:    hint,
	}
}

// Error renders the message followed by the detail and hint lines, if any.
func (d *DeferredError) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Message)
	if d.Detail != "" {
		sb.WriteString("\nDETAIL: ")
		sb.WriteString(d.Detail)
	}
	if d.Hint != "" {
		sb.WriteString("\nHINT: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// ErrorCode implements ErrorWithCode.
func (d *DeferredError) ErrorCode() codes.Code {
	return d.Code
}

// ErrorState implements ErrorWithState.
func (d *DeferredError) ErrorState() State {
	return d.State
}

// Err raises the deferred error. It returns a nil error for a nil receiver,
// so callers can write `return d.Err()` unconditionally.
func (d *DeferredError) Err() error {
	if d == nil {
		return nil
	}
	return d
}
