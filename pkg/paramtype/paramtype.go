// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package paramtype describes the shape of value a command parameter
// accepts.
//
// A Type is a small algebraic description built from scalars, booleans
// and the generic shapes Union, List and Tuple:
//
//	paramtype.Int                                   // int
//	paramtype.Optional(paramtype.String)            // union[str, None]
//	paramtype.List(paramtype.Float)                 // list[float]
//	paramtype.Tuple(paramtype.Int, paramtype.Int)   // tuple[int, int]
//	paramtype.Tuple(paramtype.Int, paramtype.Ellipsis) // tuple[int, ...]
//
// Types are plain descriptions. Deciding which shapes are usable on a
// command line is left to the compiler package.
package paramtype

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	// KindInvalid is the zero Type. Commands use it for parameters that
	// carry no type annotation.
	KindInvalid Kind = iota
	KindScalar
	KindBool
	KindNone
	KindEllipsis
	KindUnion
	KindList
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindScalar:
		return "scalar"
	case KindBool:
		return "bool"
	case KindNone:
		return "none"
	case KindEllipsis:
		return "ellipsis"
	case KindUnion:
		return "union"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseFunc converts a raw command-line token into a value.
type ParseFunc func(string) (any, error)

// FormatFunc renders a value back into a single token.
type FormatFunc func(any) string

// Type describes the value a parameter accepts. The zero Type means
// "no annotation".
type Type struct {
	kind   Kind
	name   string
	goType reflect.Type
	parse  ParseFunc
	format FormatFunc
	elems  []Type
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

var (
	String   = scalar("str", reflect.TypeOf(""), parseString, nil)
	Int      = scalar("int", reflect.TypeOf(0), parseInt, nil)
	Int64    = scalar("int64", reflect.TypeOf(int64(0)), parseInt64, nil)
	Uint     = scalar("uint", reflect.TypeOf(uint(0)), parseUint, nil)
	Float    = scalar("float", reflect.TypeOf(0.0), parseFloat, formatFloat)
	Duration = scalar("duration", reflect.TypeOf(time.Duration(0)), parseDuration, nil)

	Bool = Type{
		kind:   KindBool,
		name:   "bool",
		goType: reflect.TypeOf(false),
		parse:  parseBool,
		format: formatBool,
	}

	// None marks the absent variant of an Optional.
	None = Type{kind: KindNone, name: "None"}

	// Ellipsis marks a variable-length Tuple when used as its second
	// element.
	Ellipsis = Type{kind: KindEllipsis, name: "..."}
)

func scalar(name string, goType reflect.Type, parse ParseFunc, format FormatFunc) Type {
	return Type{kind: KindScalar, name: name, goType: goType, parse: parse, format: format}
}

// Func returns a scalar Type that coerces tokens with parse. Values are
// rendered back with fmt.Sprint.
func Func(name string, parse ParseFunc) Type {
	return scalar(name, anyType, parse, nil)
}

// Scalar is like Func but records the Go type of parsed values and an
// optional formatter. goType may be nil.
func Scalar(name string, goType reflect.Type, parse ParseFunc, format FormatFunc) Type {
	if goType == nil {
		goType = anyType
	}
	return scalar(name, goType, parse, format)
}

// Union returns a union of the given variants.
func Union(variants ...Type) Type {
	return Type{kind: KindUnion, name: "union", elems: copyTypes(variants)}
}

// Optional is shorthand for Union(t, None).
func Optional(t Type) Type {
	return Union(t, None)
}

// List returns a homogeneous list type. It is variadic so that a list
// without an element type can be described; such lists are not usable
// as parameter types.
func List(elem ...Type) Type {
	return Type{kind: KindList, name: "list", elems: copyTypes(elem)}
}

// Tuple returns a tuple type. Tuple(t, Ellipsis) is a variable-length
// tuple of t.
func Tuple(elems ...Type) Type {
	return Type{kind: KindTuple, name: "tuple", elems: copyTypes(elems)}
}

func copyTypes(ts []Type) []Type {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Type, len(ts))
	copy(out, ts)
	return out
}

// Kind reports the variant of t.
func (t Type) Kind() Kind { return t.kind }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.kind == KindInvalid }

// Name is the short name of a scalar or bool type.
func (t Type) Name() string { return t.name }

// Elems returns the type arguments of a Union, List or Tuple.
func (t Type) Elems() []Type { return copyTypes(t.elems) }

// GoType is the Go type of values produced by Parse. Generic shapes
// report the Go type of their parsed representation: a slice for lists,
// an array for fixed tuples and Sequence for variable tuples.
func (t Type) GoType() reflect.Type {
	switch t.kind {
	case KindScalar, KindBool:
		return t.goType
	case KindList:
		if len(t.elems) == 1 {
			return reflect.SliceOf(t.elems[0].GoType())
		}
	case KindTuple:
		if t.IsVariadic() {
			return sequenceType
		}
		if len(t.elems) > 0 {
			return reflect.ArrayOf(len(t.elems), t.elems[0].GoType())
		}
	case KindUnion:
		if len(t.elems) == 2 && t.elems[1].kind == KindNone {
			return t.elems[0].GoType()
		}
	}
	return anyType
}

// IsVariadic reports whether t is a Tuple(elem, Ellipsis).
func (t Type) IsVariadic() bool {
	return t.kind == KindTuple && len(t.elems) == 2 && t.elems[1].kind == KindEllipsis
}

// Parse coerces a single token. Only scalar and bool types can parse.
func (t Type) Parse(s string) (any, error) {
	if t.parse == nil {
		return nil, fmt.Errorf("type %s cannot be parsed from a single value", t)
	}
	return t.parse(s)
}

// Format renders a scalar or bool value as a token accepted by Parse.
func (t Type) Format(v any) string {
	if t.format != nil {
		return t.format(v)
	}
	return fmt.Sprint(v)
}

// Equal reports whether t and o describe the same type. Scalars are
// compared by name, Go type and parse function. Closures created by the
// same function literal count as the same parse function.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || t.name != o.name || t.goType != o.goType || len(t.elems) != len(o.elems) {
		return false
	}
	if funcPC(t.parse) != funcPC(o.parse) {
		return false
	}
	for i := range t.elems {
		if !t.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

func funcPC(f ParseFunc) uintptr {
	if f == nil {
		return 0
	}
	return reflect.ValueOf(f).Pointer()
}

func (t Type) String() string {
	switch t.kind {
	case KindInvalid:
		return "<none>"
	case KindUnion, KindList, KindTuple:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		if t.kind == KindUnion && len(t.elems) == 2 && t.elems[1].kind == KindNone {
			return "optional[" + parts[0] + "]"
		}
		if len(parts) == 0 {
			return t.name
		}
		return t.name + "[" + strings.Join(parts, ", ") + "]"
	}
	return t.name
}

func parseString(s string) (any, error) { return s, nil }

func parseInt(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid int value %q", s)
	}
	return n, nil
}

func parseInt64(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid int64 value %q", s)
	}
	return n, nil
}

func parseUint(s string) (any, error) {
	n, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return nil, fmt.Errorf("invalid uint value %q", s)
	}
	return uint(n), nil
}

func parseFloat(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float value %q", s)
	}
	return f, nil
}

func formatFloat(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func parseDuration(s string) (any, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func parseBool(s string) (any, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bool value %q", s)
	}
	return b, nil
}

func formatBool(v any) string {
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprint(v)
}
