// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paramtype

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ErrNilDefault is returned by Infer when the default value is nil.
var ErrNilDefault = errors.New("cannot infer a type from a nil default")

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
)

// Infer returns the Type of a default value, the way an unannotated
// parameter gets its type.
func Infer(v any) (Type, error) {
	if v == nil {
		return Type{}, ErrNilDefault
	}
	if s, ok := v.(Sequence); ok {
		if s.Len() == 0 {
			return Type{}, fmt.Errorf("cannot infer an element type from an empty sequence")
		}
		elem, err := Infer(s.At(0))
		if err != nil {
			return Type{}, err
		}
		return Tuple(elem, Ellipsis), nil
	}
	return FromGoType(reflect.TypeOf(v))
}

// Of returns the Type for values of T.
func Of[T any]() (Type, error) {
	return FromGoType(reflect.TypeOf((*T)(nil)).Elem())
}

// MustOf is like Of but panics if T has no Type. It is meant for
// package-level schema declarations.
func MustOf[T any]() Type {
	t, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return t
}

// FromGoType maps a Go type to a Type:
//
//   - bool, string, integer and float kinds map to scalars;
//   - time.Duration maps to Duration;
//   - types implementing encoding.TextUnmarshaler map to scalars;
//   - []T maps to List(T), [N]T to a tuple of N T's;
//   - *T maps to Optional(T).
func FromGoType(t reflect.Type) (Type, error) {
	if t == nil {
		return Type{}, ErrNilDefault
	}
	switch t {
	case durationType:
		return Duration, nil
	case String.goType:
		return String, nil
	case Int.goType:
		return Int, nil
	case Int64.goType:
		return Int64, nil
	case Uint.goType:
		return Uint, nil
	case Float.goType:
		return Float, nil
	case Bool.goType:
		return Bool, nil
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return textScalar(t), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return Type{kind: KindBool, name: t.String(), goType: t, parse: convertParse(parseBool, t), format: formatBool}, nil
	case reflect.String:
		return scalar(t.String(), t, convertParse(parseString, t), nil), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar(t.String(), t, func(s string) (any, error) {
			n, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", t, s)
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		}, nil), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalar(t.String(), t, func(s string) (any, error) {
			n, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", t, s)
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		}, nil), nil
	case reflect.Float32, reflect.Float64:
		return scalar(t.String(), t, func(s string) (any, error) {
			f, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", t, s)
			}
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}, func(v any) string {
			rv := reflect.ValueOf(v)
			if rv.CanFloat() {
				return strconv.FormatFloat(rv.Float(), 'g', -1, t.Bits())
			}
			return fmt.Sprint(v)
		}), nil
	case reflect.Slice:
		elem, err := FromGoType(t.Elem())
		if err != nil {
			return Type{}, err
		}
		return List(elem), nil
	case reflect.Array:
		elem, err := FromGoType(t.Elem())
		if err != nil {
			return Type{}, err
		}
		elems := make([]Type, t.Len())
		for i := range elems {
			elems[i] = elem
		}
		return Tuple(elems...), nil
	case reflect.Pointer:
		elem, err := FromGoType(t.Elem())
		if err != nil {
			return Type{}, err
		}
		return Optional(elem), nil
	}
	return Type{}, fmt.Errorf("no parameter type for Go type %s", t)
}

func convertParse(parse ParseFunc, t reflect.Type) ParseFunc {
	return func(s string) (any, error) {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(t).Interface(), nil
	}
}

func textScalar(t reflect.Type) Type {
	parse := func(s string) (any, error) {
		v := reflect.New(t)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", t, s, err)
		}
		return v.Elem().Interface(), nil
	}
	var format FormatFunc
	if t.Implements(textMarshalerType) {
		format = func(v any) string {
			m, ok := v.(encoding.TextMarshaler)
			if !ok {
				return fmt.Sprint(v)
			}
			b, err := m.MarshalText()
			if err != nil {
				return fmt.Sprint(v)
			}
			return string(b)
		}
	}
	return scalar(t.String(), t, parse, format)
}
