// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeetrun/autocli/pkg/paramtype"
)

// ErrHelp is returned by Parse when -h or --help is given and no
// parameter claims that flag.
var ErrHelp = errors.New("help requested")

// CompileError reports why a parameter of a command could not be turned
// into an argument rule.
type CompileError struct {
	Command string
	Func    string // fully qualified name of the command's function
	Param   string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("error processing parameter '%s' of '%s' (%s): %v", e.Param, e.Command, e.Func, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// MissingTypeError is returned when a parameter has no type override, no
// annotation and no usable default value.
type MissingTypeError struct {
	Param string
}

func (e *MissingTypeError) Error() string {
	return "parameter does not have a type annotation or default value"
}

// UnsupportedTypeError is returned for type shapes that have no
// command-line representation.
type UnsupportedTypeError struct {
	Type   paramtype.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type.IsZero() {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Type)
}

// ConflictingFlagError is returned when two parameters would answer to
// the same flag token.
type ConflictingFlagError struct {
	Flag  string
	Param string
	Other string
}

func (e *ConflictingFlagError) Error() string {
	return fmt.Sprintf("flag %s of parameter '%s' conflicts with parameter '%s'", e.Flag, e.Param, e.Other)
}

// UnknownFlagError is returned for a flag no parameter declares, or for a
// value token that does not follow any flag.
type UnknownFlagError struct {
	Flag string
}

func (e *UnknownFlagError) Error() string {
	if !strings.HasPrefix(e.Flag, "-") {
		return fmt.Sprintf("unrecognized argument: %s", e.Flag)
	}
	return fmt.Sprintf("unknown flag: %s", e.Flag)
}

// MissingRequiredArgumentError lists the required flags that were not
// given, in declaration order.
type MissingRequiredArgumentError struct {
	Flags []string
}

func (e *MissingRequiredArgumentError) Error() string {
	return "the following arguments are required: " + strings.Join(e.Flags, ", ")
}

// ArityMismatchError is returned when a flag is followed by the wrong
// number of values.
type ArityMismatchError struct {
	Flag     string
	Expected string // "1", "2", "at least 1", "no"
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("flag %s expects %s value(s), got %d", e.Flag, e.Expected, e.Got)
}

// ValueCoercionError is returned when a value token cannot be converted
// to the parameter's type.
type ValueCoercionError struct {
	Flag  string
	Value string
	Type  string
	Err   error
}

func (e *ValueCoercionError) Error() string {
	return fmt.Sprintf("invalid %s value for %s: %q", e.Type, e.Flag, e.Value)
}

func (e *ValueCoercionError) Unwrap() error { return e.Err }
