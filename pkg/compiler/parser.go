// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

// Parser parses the command-line tokens of one command. It is immutable
// and safe for concurrent use.
type Parser struct {
	name        string
	description string
	specs       []ParameterSpec
	index       map[string]int // long flags and short aliases
}

// Name returns the name of the command the parser was compiled from.
func (p *Parser) Name() string { return p.name }

// Specs returns the compiled argument rules in declaration order.
func (p *Parser) Specs() []ParameterSpec {
	out := make([]ParameterSpec, len(p.specs))
	copy(out, p.specs)
	return out
}

// Spec returns the rule for the named parameter.
func (p *Parser) Spec(name string) (ParameterSpec, bool) {
	for _, s := range p.specs {
		if s.Name == name {
			return s, true
		}
	}
	return ParameterSpec{}, false
}

// Parse consumes tokens and returns one value per declared parameter.
// Parameters that were not given take their default, which is nil for
// optional parameters without one.
func (p *Parser) Parse(tokens []string) (command.Args, error) {
	collected := make(map[int][]any, len(p.specs))
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		i++
		if !isFlag(tok) {
			return nil, &UnknownFlagError{Flag: tok}
		}
		name, inline, hasInline := strings.Cut(tok, "=")
		idx, ok := p.index[name]
		if !ok {
			if name == "-h" || name == "--help" {
				return nil, ErrHelp
			}
			return nil, &UnknownFlagError{Flag: name}
		}
		spec := &p.specs[idx]

		if spec.Shape == ShapeFlag {
			if hasInline {
				return nil, &ArityMismatchError{Flag: name, Expected: "no", Got: 1}
			}
			collected[idx] = []any{true}
			continue
		}

		var raw []string
		if hasInline {
			raw = append(raw, inline)
		}
		for i < len(tokens) && !isFlag(tokens[i]) {
			raw = append(raw, tokens[i])
			i++
		}
		if err := checkArity(spec, name, len(raw)); err != nil {
			return nil, err
		}
		vals := make([]any, len(raw))
		for j, r := range raw {
			v, err := spec.Elem.Parse(r)
			if err != nil {
				return nil, &ValueCoercionError{Flag: name, Value: r, Type: spec.Elem.String(), Err: err}
			}
			vals[j] = v
		}
		// A repeated flag replaces the earlier values.
		collected[idx] = vals
	}

	var missing []string
	for i, spec := range p.specs {
		if _, ok := collected[i]; !ok && spec.Required {
			missing = append(missing, spec.Flag)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredArgumentError{Flags: missing}
	}

	args := make(command.Args, len(p.specs))
	for i, spec := range p.specs {
		vals, ok := collected[i]
		if !ok {
			args[spec.Name] = spec.Default
			continue
		}
		v, err := transform(spec, vals)
		if err != nil {
			return nil, err
		}
		args[spec.Name] = v
	}
	return args, nil
}

func checkArity(spec *ParameterSpec, flag string, got int) error {
	switch {
	case spec.Arity == Unbounded && got >= 1:
		return nil
	case spec.Arity == Unbounded:
		return &ArityMismatchError{Flag: flag, Expected: "at least 1", Got: got}
	case got != spec.Arity:
		return &ArityMismatchError{Flag: flag, Expected: strconv.Itoa(spec.Arity), Got: got}
	}
	return nil
}

// transform turns the coerced values of one flag into the parameter's
// value.
func transform(spec ParameterSpec, vals []any) (any, error) {
	switch spec.Shape {
	case ShapeList:
		rv := reflect.MakeSlice(reflect.SliceOf(spec.Elem.GoType()), len(vals), len(vals))
		if err := fill(spec, rv, vals); err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	case ShapeFixedTuple:
		rv := reflect.New(reflect.ArrayOf(len(vals), spec.Elem.GoType())).Elem()
		if err := fill(spec, rv, vals); err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	case ShapeVariableTuple:
		return paramtype.Freeze(vals...), nil
	}
	return vals[0], nil
}

func fill(spec ParameterSpec, dst reflect.Value, vals []any) error {
	et := dst.Type().Elem()
	for i, v := range vals {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || !rv.Type().AssignableTo(et) {
			return &ValueCoercionError{
				Flag:  spec.Flag,
				Value: fmt.Sprint(v),
				Type:  spec.Elem.String(),
				Err:   fmt.Errorf("parsed value has type %T, want %s", v, et),
			}
		}
		dst.Index(i).Set(rv)
	}
	return nil
}

// isFlag reports whether tok names a flag rather than a value. Negative
// numbers are values.
func isFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-' && !isNumeric(tok)
}

// isNumeric reports whether s is a number, including signed and
// exponent forms such as "-1e-07". Inf and NaN spellings are not.
func isNumeric(s string) bool {
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
