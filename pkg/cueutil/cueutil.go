// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Settings files for security controls are validated against an embedded CUE
// schema before any artifact generation starts. The package consolidates the
// 3-step parsing pattern used by pkg/control:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to a Go value
//
// # Usage
//
//	//go:embed settings_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    schema,
//	    fileBytes,
//	    "#Settings",
//	    cueutil.WithFilename("lockdown.cue"),
//	)
package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// MaxFileSize is the default upper bound for user-supplied CUE input.
// Settings files are small; anything past this is almost certainly a mistake.
const MaxFileSize = 1 << 20 // 1 MiB

// Option configures a ParseAndDecode call.
type Option func(*options)

type options struct {
	filename    string
	maxFileSize int
}

func defaultOptions() options {
	return options{maxFileSize: MaxFileSize}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides the input size limit.
func WithMaxFileSize(n int) Option {
	return func(o *options) { o.maxFileSize = n }
}

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go value.
	Value *T

	// Unified is the unified CUE value, available for callers that need to
	// inspect fields the Go type does not capture.
	Unified cue.Value
}

// ParseAndDecode performs the 3-step CUE parsing flow: compile the schema,
// compile the user data and unify it with the schema definition at schemaPath
// (e.g. "#Settings"), then validate and decode into T.
//
// Errors from the user data carry the filename and CUE path of the offending
// field; schema compilation errors are reported as internal errors since the
// schema ships embedded in the binary.
func ParseAndDecode[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if len(data) > o.maxFileSize {
		return nil, fmt.Errorf("%s: input is %d bytes, maximum allowed is %d", filename, len(data), o.maxFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}
