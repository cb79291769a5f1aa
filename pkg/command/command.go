// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package command defines Command, a named function together with the
// schema of its parameters.
//
// Go functions do not expose parameter names at runtime, so a Command
// declares its parameters explicitly:
//
//	add := command.New("add", addFn,
//	    command.Required("a", paramtype.Int),
//	    command.Inferred("b", 38),
//	).WithDoc(`Adds two numbers.
//
//	:param a: the first number
//	:param b: the second number`)
//
// A Command is a value and is never mutated; the With methods return
// modified copies.
package command

import (
	"context"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

// Func is the function a Command invokes. Args holds one coerced value
// per declared parameter.
type Func func(ctx context.Context, args Args) (any, error)

// ReturnFunc transforms the result of a Func before it is displayed.
type ReturnFunc func(any) (any, error)

// Param declares one parameter of a Command.
type Param struct {
	Name string
	// Type is the declared annotation. The zero Type means the parameter
	// is unannotated.
	Type       paramtype.Type
	Default    any
	HasDefault bool
}

// Required declares a parameter of type t without a default.
func Required(name string, t paramtype.Type) Param {
	return Param{Name: name, Type: t}
}

// Default declares a parameter of type t with default value v.
func Default(name string, t paramtype.Type, v any) Param {
	return Param{Name: name, Type: t, Default: v, HasDefault: true}
}

// Inferred declares an unannotated parameter whose type is taken from
// its default value v.
func Inferred(name string, v any) Param {
	return Param{Name: name, Default: v, HasDefault: true}
}

// Untyped declares a parameter with neither annotation nor default. Its
// type must be supplied with Command.WithParameterTypes.
func Untyped(name string) Param {
	return Param{Name: name}
}

// Command is a named, invocable unit with a declared parameter schema.
type Command struct {
	name           string
	fn             Func
	params         []Param
	doc            string
	parameterTypes map[string]paramtype.Type
	returnType     ReturnFunc
	shortNames     map[string]string
}

// New returns a Command called name.
func New(name string, fn Func, params ...Param) Command {
	return Command{
		name:   name,
		fn:     fn,
		params: slices.Clone(params),
	}
}

// FromFunc is like New but derives the command name from the Go
// identifier of fn, converted to kebab case (AddNumbers -> add-numbers).
// Anonymous functions have no useful identifier; use New for those.
func FromFunc(fn Func, params ...Param) Command {
	return New(strcase.ToKebab(baseName(funcName(fn))), fn, params...)
}

func funcName(fn Func) string {
	if fn == nil {
		return "<nil>"
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "<unknown>"
	}
	return f.Name()
}

// baseName strips the package path and receiver from a runtime function
// name: "github.com/x/calc.(*T).Add-fm" -> "Add".
func baseName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return strings.TrimSuffix(full, "-fm")
}

func (c Command) Name() string { return c.name }

// Func returns the function the command invokes.
func (c Command) Func() Func { return c.fn }

// FuncName is the fully qualified Go name of the command's function.
func (c Command) FuncName() string { return funcName(c.fn) }

// Params returns the declared parameters in declaration order.
func (c Command) Params() []Param { return slices.Clone(c.params) }

// Doc returns the documentation block attached to the command.
func (c Command) Doc() string { return c.doc }

// ParameterTypes returns the type overrides keyed by parameter name.
func (c Command) ParameterTypes() map[string]paramtype.Type { return maps.Clone(c.parameterTypes) }

// ParameterType returns the type override for a parameter, if any.
func (c Command) ParameterType(param string) (paramtype.Type, bool) {
	t, ok := c.parameterTypes[param]
	return t, ok
}

// ReturnType returns the result transform, or nil.
func (c Command) ReturnType() ReturnFunc { return c.returnType }

// ShortNames returns the short flag aliases keyed by parameter name.
func (c Command) ShortNames() map[string]string { return maps.Clone(c.shortNames) }

// ShortName returns the short alias of a parameter, if any.
func (c Command) ShortName(param string) (string, bool) {
	s, ok := c.shortNames[param]
	return s, ok
}

func (c Command) WithName(name string) Command {
	c.name = name
	return c.clone()
}

func (c Command) WithDoc(doc string) Command {
	c.doc = doc
	return c.clone()
}

// WithParameterTypes returns a copy of c with types overriding the
// declared annotations of the named parameters.
func (c Command) WithParameterTypes(types map[string]paramtype.Type) Command {
	c = c.clone()
	c.parameterTypes = maps.Clone(types)
	return c
}

func (c Command) WithReturnType(fn ReturnFunc) Command {
	c.returnType = fn
	return c.clone()
}

// WithShortNames returns a copy of c with the given flag aliases, keyed
// by parameter name. The compiler gives an alias without a leading dash
// one ("v" -> "-v").
func (c Command) WithShortNames(names map[string]string) Command {
	c = c.clone()
	c.shortNames = maps.Clone(names)
	return c
}

// clone detaches c from the slices and maps of the value it was copied
// from.
func (c Command) clone() Command {
	c.params = slices.Clone(c.params)
	c.parameterTypes = maps.Clone(c.parameterTypes)
	c.shortNames = maps.Clone(c.shortNames)
	return c
}

// Invoke calls the command's function and applies its return type.
func (c Command) Invoke(ctx context.Context, args Args) (any, error) {
	if c.fn == nil {
		return nil, &NoFuncError{Command: c.name}
	}
	res, err := c.fn(ctx, args)
	if err != nil {
		return nil, err
	}
	if c.returnType != nil {
		return c.returnType(res)
	}
	return res, nil
}

// NoFuncError is returned when invoking a Command without a function.
type NoFuncError struct {
	Command string
}

func (e *NoFuncError) Error() string {
	return "command '" + e.Command + "' has no function"
}
