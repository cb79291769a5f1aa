// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paramtype

import (
	"errors"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Type{}, "<none>"},
		{Int, "int"},
		{Optional(String), "optional[str]"},
		{Union(Int, String), "union[int, str]"},
		{List(Float), "list[float]"},
		{List(), "list"},
		{Tuple(Int, Int), "tuple[int, int]"},
		{Tuple(Int, Ellipsis), "tuple[int, ...]"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Type
	}{
		{"int", 38, Int},
		{"string", "x", String},
		{"float", 1.5, Float},
		{"bool", true, Bool},
		{"duration", 2 * time.Second, Duration},
		{"slice", []int{1, 2}, List(Int)},
		{"array", [2]int{1, 2}, Tuple(Int, Int)},
		{"sequence", Freeze(1, 2), Tuple(Int, Ellipsis)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Infer(tt.value)
			if err != nil {
				t.Fatalf("Infer(%#v) error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Infer(%#v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestInferNil(t *testing.T) {
	if _, err := Infer(nil); !errors.Is(err, ErrNilDefault) {
		t.Fatalf("Infer(nil) error = %v, want ErrNilDefault", err)
	}
}

func TestInferUnsupported(t *testing.T) {
	if _, err := Infer(map[string]int{}); err == nil {
		t.Fatalf("Infer(map) succeeded, want error")
	}
}

func TestOfPointerIsOptional(t *testing.T) {
	got, err := Of[*int]()
	if err != nil {
		t.Fatalf("Of[*int] error: %v", err)
	}
	if !got.Equal(Optional(Int)) {
		t.Fatalf("Of[*int] = %s, want optional[int]", got)
	}
}

func TestTextUnmarshalerScalar(t *testing.T) {
	typ := MustOf[netip.Addr]()
	if typ.Kind() != KindScalar {
		t.Fatalf("Kind = %v, want scalar", typ.Kind())
	}
	v, err := typ.Parse("10.0.0.1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := netip.MustParseAddr("10.0.0.1")
	if v != want {
		t.Fatalf("Parse = %#v, want %#v", v, want)
	}
	if got := typ.Format(v); got != "10.0.0.1" {
		t.Fatalf("Format = %q, want %q", got, "10.0.0.1")
	}
	if _, err := typ.Parse("not-an-ip"); err == nil {
		t.Fatalf("Parse(not-an-ip) succeeded, want error")
	}
}

func TestNamedIntegerType(t *testing.T) {
	type port uint16
	typ := MustOf[port]()
	v, err := typ.Parse("8080")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v != port(8080) {
		t.Fatalf("Parse = %#v, want port(8080)", v)
	}
	if _, err := typ.Parse("70000"); err == nil {
		t.Fatalf("Parse(70000) succeeded, want range error")
	}
}

func TestScalarParse(t *testing.T) {
	if v, err := Int.Parse("-3"); err != nil || v != -3 {
		t.Fatalf("Int.Parse(-3) = %#v, %v", v, err)
	}
	if _, err := Int.Parse("1.5"); err == nil {
		t.Fatalf("Int.Parse(1.5) succeeded, want error")
	}
	if v, err := Float.Parse("1e3"); err != nil || v != 1000.0 {
		t.Fatalf("Float.Parse(1e3) = %#v, %v", v, err)
	}
	if got := Float.Format(0.1); got != "0.1" {
		t.Fatalf("Float.Format(0.1) = %q", got)
	}
	if _, err := List(Int).Parse("1"); err == nil {
		t.Fatalf("List.Parse succeeded, want error")
	}
}

func TestGoType(t *testing.T) {
	tests := []struct {
		typ  Type
		want reflect.Type
	}{
		{List(Int), reflect.TypeOf([]int(nil))},
		{Tuple(Float, Float), reflect.TypeOf([2]float64{})},
		{Tuple(Int, Ellipsis), reflect.TypeOf(Sequence{})},
		{Optional(String), reflect.TypeOf("")},
	}
	for _, tt := range tests {
		if got := tt.typ.GoType(); got != tt.want {
			t.Errorf("%s.GoType() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestSequenceIsImmutable(t *testing.T) {
	items := []any{1, 2, 3}
	s := Freeze(items...)
	items[0] = 100
	vals := s.Values()
	vals[1] = 200
	if s.At(0) != 1 || s.At(1) != 2 {
		t.Fatalf("sequence changed through aliases: %v", s)
	}
	ints, ok := SequenceOf[int](s)
	if !ok || !reflect.DeepEqual(ints, []int{1, 2, 3}) {
		t.Fatalf("SequenceOf = %#v, %v", ints, ok)
	}
	if _, ok := SequenceOf[string](s); ok {
		t.Fatalf("SequenceOf[string] succeeded, want false")
	}
	if got := s.String(); got != "(1, 2, 3)" {
		t.Fatalf("String() = %q", got)
	}
}

func parseUpper(s string) (any, error) { return strings.ToUpper(s), nil }

func parseLower(s string) (any, error) { return strings.ToLower(s), nil }

func TestFuncScalarEquality(t *testing.T) {
	upper, lower := Func("word", parseUpper), Func("word", parseLower)
	if upper.Equal(lower) {
		t.Fatalf("scalars with different parse functions compare equal")
	}
	if !upper.Equal(Func("word", parseUpper)) {
		t.Fatalf("scalars with the same parse function compare unequal")
	}
	if Tuple(upper, lower).Equal(Tuple(upper, upper)) {
		t.Fatalf("tuples of different scalars compare equal")
	}
}
