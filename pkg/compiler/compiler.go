// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler turns a command's parameter schema into a command-line
// parser.
//
// Compile resolves the type of every parameter, picks the argument shape
// for it and assembles a Parser. The Parser consumes raw tokens of the
// form
//
//	--a 1 --b 2 3 --verbose
//
// and returns a command.Args with one coerced value per parameter.
package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/funcdoc"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

// Shape is the argument form a parameter takes on the command line.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeOptionalScalar
	ShapeList
	ShapeFixedTuple
	ShapeVariableTuple
	ShapeFlag
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeOptionalScalar:
		return "optional-scalar"
	case ShapeList:
		return "list"
	case ShapeFixedTuple:
		return "fixed-tuple"
	case ShapeVariableTuple:
		return "variable-tuple"
	case ShapeFlag:
		return "boolean-flag"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Unbounded is the Arity of list and variable tuple parameters.
const Unbounded = -1

// ParameterSpec is the argument rule compiled for one parameter.
type ParameterSpec struct {
	Name string
	// Type is the resolved type of the parameter.
	Type paramtype.Type
	// Elem is the type each value token is parsed as.
	Elem       paramtype.Type
	Shape      Shape
	Arity      int // value tokens per occurrence; Unbounded for one or more
	Required   bool
	HasDefault bool
	Default    any
	Flag       string // long form, "--name"
	Short      string // optional alias, "-n"
	Help       string
}

// Compile builds the Parser for cmd. It fails on the first parameter
// whose type cannot be resolved or has no command-line form; the error
// is a *CompileError.
func Compile(cmd command.Command) (*Parser, error) {
	doc := funcdoc.Parse(cmd.Doc())
	p := &Parser{
		name:        cmd.Name(),
		description: doc.Description,
		index:       map[string]int{},
	}
	owner := map[string]string{}
	for _, param := range cmd.Params() {
		spec, err := compileParam(cmd, param)
		if err != nil {
			return nil, wrap(cmd, param.Name, err)
		}
		spec.Help = doc.ParamDocs[param.Name]
		if other, ok := owner[spec.Flag]; ok {
			return nil, wrap(cmd, param.Name, &ConflictingFlagError{Flag: spec.Flag, Param: param.Name, Other: other})
		}
		owner[spec.Flag] = param.Name
		p.index[spec.Flag] = len(p.specs)
		p.specs = append(p.specs, spec)
	}
	if err := p.addShortNames(cmd, owner); err != nil {
		return nil, err
	}
	return p, nil
}

func wrap(cmd command.Command, param string, err error) error {
	return &CompileError{Command: cmd.Name(), Func: cmd.FuncName(), Param: param, Err: err}
}

func compileParam(cmd command.Command, param command.Param) (ParameterSpec, error) {
	t, err := resolveType(cmd, param)
	if err != nil {
		return ParameterSpec{}, err
	}
	spec := ParameterSpec{
		Name:       param.Name,
		Type:       t,
		Flag:       "--" + param.Name,
		Required:   !param.HasDefault,
		HasDefault: param.HasDefault,
	}
	if param.HasDefault {
		spec.Default = derefDefault(param.Default, t)
	}
	if err := dispatch(&spec, t); err != nil {
		return ParameterSpec{}, err
	}
	return spec, nil
}

// derefDefault unwraps a *T default of an Optional(T) parameter, so a
// parameter holds the same Go type whether or not its flag was given.
// A nil pointer means absent.
func derefDefault(v any, t paramtype.Type) any {
	rv := reflect.ValueOf(v)
	if t.Kind() != paramtype.KindUnion || rv.Kind() != reflect.Pointer || rv.Type() != reflect.PointerTo(t.GoType()) {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

// resolveType picks the override, then the annotation, then the type of
// the default value.
func resolveType(cmd command.Command, param command.Param) (paramtype.Type, error) {
	if t, ok := cmd.ParameterType(param.Name); ok && !t.IsZero() {
		return t, nil
	}
	if !param.Type.IsZero() {
		return param.Type, nil
	}
	if !param.HasDefault {
		return paramtype.Type{}, &MissingTypeError{Param: param.Name}
	}
	t, err := paramtype.Infer(param.Default)
	if errors.Is(err, paramtype.ErrNilDefault) {
		return paramtype.Type{}, &MissingTypeError{Param: param.Name}
	}
	if err != nil {
		return paramtype.Type{}, &UnsupportedTypeError{Reason: err.Error()}
	}
	return t, nil
}

func dispatch(spec *ParameterSpec, t paramtype.Type) error {
	elems := t.Elems()
	switch t.Kind() {
	case paramtype.KindUnion:
		if len(elems) != 2 || elems[1].Kind() != paramtype.KindNone {
			return &UnsupportedTypeError{Type: t, Reason: "unions are not supported"}
		}
		if err := dispatch(spec, elems[0]); err != nil {
			return err
		}
		spec.Required = false
		if spec.Shape == ShapeScalar {
			spec.Shape = ShapeOptionalScalar
		}
	case paramtype.KindList:
		if len(elems) != 1 {
			return &UnsupportedTypeError{Type: t, Reason: "lists must have exactly one element type"}
		}
		if err := checkElem(t, elems[0]); err != nil {
			return err
		}
		spec.Shape, spec.Arity, spec.Elem = ShapeList, Unbounded, elems[0]
	case paramtype.KindTuple:
		if len(elems) == 0 {
			return &UnsupportedTypeError{Type: t, Reason: "tuples must have at least one element type"}
		}
		if t.IsVariadic() {
			if err := checkElem(t, elems[0]); err != nil {
				return err
			}
			spec.Shape, spec.Arity, spec.Elem = ShapeVariableTuple, Unbounded, elems[0]
			return nil
		}
		for _, e := range elems {
			if e.Kind() == paramtype.KindEllipsis {
				return &UnsupportedTypeError{Type: t, Reason: "... is only allowed as the second of two tuple elements"}
			}
			if !e.Equal(elems[0]) {
				return &UnsupportedTypeError{Type: t, Reason: "tuples with mixed element types are not supported"}
			}
		}
		if err := checkElem(t, elems[0]); err != nil {
			return err
		}
		spec.Shape, spec.Arity, spec.Elem = ShapeFixedTuple, len(elems), elems[0]
	case paramtype.KindBool:
		spec.Shape, spec.Arity, spec.Elem = ShapeFlag, 0, t
		spec.Required = false
		spec.HasDefault = true
		spec.Default = false
	case paramtype.KindScalar:
		spec.Shape, spec.Arity, spec.Elem = ShapeScalar, 1, t
	default:
		return &UnsupportedTypeError{Type: t, Reason: "not a parameter type"}
	}
	return nil
}

// checkElem reports whether e can be parsed from a single token inside
// the collection type t.
func checkElem(t, e paramtype.Type) error {
	switch e.Kind() {
	case paramtype.KindScalar, paramtype.KindBool:
		return nil
	}
	return &UnsupportedTypeError{Type: t, Reason: "collection elements must be scalar"}
}

// addShortNames registers the command's short aliases. owner maps every
// long flag to its parameter.
func (p *Parser) addShortNames(cmd command.Command, owner map[string]string) error {
	for _, spec := range p.specs {
		alias, ok := cmd.ShortName(spec.Name)
		if !ok {
			continue
		}
		if !strings.HasPrefix(alias, "-") {
			alias = "-" + alias
		}
		if !validFlagToken(alias) {
			return wrap(cmd, spec.Name, fmt.Errorf("invalid short name %q", alias))
		}
		if other, ok := owner[alias]; ok {
			return wrap(cmd, spec.Name, &ConflictingFlagError{Flag: alias, Param: spec.Name, Other: other})
		}
		owner[alias] = spec.Name
		i := p.index[spec.Flag]
		p.specs[i].Short = alias
		p.index[alias] = i
	}
	for name := range cmd.ShortNames() {
		if _, ok := p.index["--"+name]; !ok {
			return wrap(cmd, name, errors.New("short name given for an undeclared parameter"))
		}
	}
	return nil
}

func validFlagToken(s string) bool {
	if len(s) < 2 || s == "--" || isNumeric(s) {
		return false
	}
	return !strings.ContainsAny(s, "= \t\n")
}
