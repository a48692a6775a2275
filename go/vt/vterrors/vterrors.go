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

// Package vterrors provides the error type used across the planner.
//
// Errors carry a gRPC status code and, optionally, a State that mirrors the
// SQL error state reported to the client. Errors produced while checking
// whether a query can be planned are not returned directly: they are wrapped
// in a DeferredError so that callers can decide to raise or only inspect them.
package vterrors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

type vtError struct {
	code  codes.Code
	state State
	msg   string
	cause error
}

func (e *vtError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap returns the wrapped error, if any.
func (e *vtError) Unwrap() error {
	return e.cause
}

// ErrorCode implements ErrorWithCode.
func (e *vtError) ErrorCode() codes.Code {
	return e.code
}

// ErrorState implements ErrorWithState.
func (e *vtError) ErrorState() State {
	return e.state
}

// New returns an error with the supplied message and code.
func New(code codes.Code, message string) error {
	return &vtError{code: code, msg: message}
}

// Errorf formats according to a format specifier and returns the string
// as a value that satisfies error.
func Errorf(code codes.Code, format string, args ...any) error {
	return &vtError{code: code, msg: fmt.Sprintf(format, args...)}
}

// NewErrorf also takes a State.
func NewErrorf(code codes.Code, state State, format string, args ...any) error {
	return &vtError{code: code, state: state, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error annotating err with message.
// If err is nil, Wrap returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &vtError{
		code:  Code(err),
		state: ErrState(err),
		msg:   message,
		cause: err,
	}
}

// Wrapf returns an error annotating err with the format specifier.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Code returns the error code if it's a vtError.
// If err is nil, it returns codes.OK.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var withCode ErrorWithCode
	if errors.As(err, &withCode) {
		return withCode.ErrorCode()
	}
	// Handle some special cases.
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Unknown
}

// ErrState returns the error state if it's a vtError.
// If err is nil, it returns Undefined.
func ErrState(err error) State {
	var withState ErrorWithState
	if errors.As(err, &withState) {
		return withState.ErrorState()
	}
	return Undefined
}

// Cause returns the immediate cause of an error, or nil if there is none.
func Cause(err error) error {
	return errors.Unwrap(err)
}

// RootCause returns the innermost error in the chain.
func RootCause(err error) error {
	for {
		cause := Cause(err)
		if cause == nil {
			return err
		}
		err = cause
	}
}

// VT12001 is returned for features the planner cannot handle.
func VT12001(msg string) error {
	return NewErrorf(codes.Unimplemented, NotSupportedYet, "VT12001: unsupported: %s", msg)
}

// VT13001 signals a bug: an invariant that well-formed input cannot break.
func VT13001(msg string) error {
	return Errorf(codes.Internal, "VT13001: [BUG] %s", msg)
}
