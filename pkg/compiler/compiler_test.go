// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

func noop(context.Context, command.Args) (any, error) { return nil, nil }

func mustCompile(t *testing.T, cmd command.Command) *Parser {
	t.Helper()
	p, err := Compile(cmd)
	if err != nil {
		t.Fatalf("Compile(%s) error: %v", cmd.Name(), err)
	}
	return p
}

func mustParse(t *testing.T, p *Parser, tokens ...string) command.Args {
	t.Helper()
	args, err := p.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", tokens, err)
	}
	return args
}

func TestParseIndependentOfOrder(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Required("a", paramtype.Int),
		command.Required("b", paramtype.String),
		command.Required("c", paramtype.Float),
	))
	want := command.Args{"a": 1, "b": "x", "c": 2.5}
	orders := [][]string{
		{"--a", "1", "--b", "x", "--c", "2.5"},
		{"--c", "2.5", "--a", "1", "--b", "x"},
		{"--b", "x", "--c", "2.5", "--a", "1"},
	}
	for _, tokens := range orders {
		if got := mustParse(t, p, tokens...); !reflect.DeepEqual(got, want) {
			t.Fatalf("Parse(%q) = %#v, want %#v", tokens, got, want)
		}
	}
}

func TestBoolFlag(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Default("verbose", paramtype.Bool, true)))

	spec, _ := p.Spec("verbose")
	if spec.Required || spec.Shape != ShapeFlag || spec.Default != false {
		t.Fatalf("spec = %+v, want optional flag defaulting to false", spec)
	}
	if got := mustParse(t, p); got["verbose"] != false {
		t.Fatalf("absent flag = %#v, want false", got["verbose"])
	}
	if got := mustParse(t, p, "--verbose"); got["verbose"] != true {
		t.Fatalf("present flag = %#v, want true", got["verbose"])
	}

	_, err := p.Parse([]string{"--verbose", "x"})
	var uf *UnknownFlagError
	if !errors.As(err, &uf) || uf.Flag != "x" {
		t.Fatalf("Parse(--verbose x) error = %v, want UnknownFlagError for x", err)
	}

	_, err = p.Parse([]string{"--verbose=true"})
	var am *ArityMismatchError
	if !errors.As(err, &am) {
		t.Fatalf("Parse(--verbose=true) error = %v, want ArityMismatchError", err)
	}
}

func TestListParameter(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Required("a", paramtype.List(paramtype.Int))))
	got := mustParse(t, p, "--a", "1", "3", "5", "7")
	if want := []int{1, 3, 5, 7}; !reflect.DeepEqual(got["a"], want) {
		t.Fatalf("a = %#v, want %#v", got["a"], want)
	}
}

func TestFixedTuple(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Required("a", paramtype.Tuple(paramtype.Int, paramtype.Int))))
	got := mustParse(t, p, "--a", "42", "1337")
	if want := [2]int{42, 1337}; !reflect.DeepEqual(got["a"], want) {
		t.Fatalf("a = %#v, want %#v", got["a"], want)
	}

	_, err := p.Parse([]string{"--a", "42"})
	var am *ArityMismatchError
	if !errors.As(err, &am) || am.Expected != "2" || am.Got != 1 {
		t.Fatalf("Parse(--a 42) error = %#v, want ArityMismatchError 2/1", err)
	}
}

func TestHeterogeneousTupleFailsCompile(t *testing.T) {
	p, err := Compile(command.New("cmd", noop, command.Required("a", paramtype.Tuple(paramtype.Int, paramtype.Float))))
	if p != nil {
		t.Fatalf("Compile returned a parser for a mixed tuple")
	}
	var ce *CompileError
	var ut *UnsupportedTypeError
	if !errors.As(err, &ce) || !errors.As(err, &ut) {
		t.Fatalf("Compile error = %v, want CompileError wrapping UnsupportedTypeError", err)
	}
	if ce.Param != "a" || ce.Command != "cmd" {
		t.Fatalf("CompileError = %+v", ce)
	}

	word := paramtype.Func("word", func(s string) (any, error) { return s, nil })
	shout := paramtype.Func("word", func(s string) (any, error) { return strings.ToUpper(s), nil })
	if _, err := Compile(command.New("cmd", noop, command.Required("a", paramtype.Tuple(word, shout)))); !errors.As(err, &ut) {
		t.Fatalf("Compile(tuple of distinct word scalars) error = %v, want UnsupportedTypeError", err)
	}
}

func TestVariableTuple(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Required("a", paramtype.Tuple(paramtype.Int, paramtype.Ellipsis))))

	got := mustParse(t, p, "--a", "3", "1", "2")
	seq, ok := got["a"].(paramtype.Sequence)
	if !ok {
		t.Fatalf("a = %#v, want paramtype.Sequence", got["a"])
	}
	if !seq.Equal(paramtype.Freeze(3, 1, 2)) {
		t.Fatalf("a = %v, want (3, 1, 2)", seq)
	}

	got = mustParse(t, p, "--a", "9")
	if seq := got["a"].(paramtype.Sequence); seq.Len() != 1 || seq.At(0) != 9 {
		t.Fatalf("a = %v, want (9)", seq)
	}

	_, err := p.Parse([]string{"--a"})
	var am *ArityMismatchError
	if !errors.As(err, &am) || am.Expected != "at least 1" {
		t.Fatalf("Parse(--a) error = %v, want ArityMismatchError", err)
	}
}

func TestMissingAndUnknown(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Required("a", paramtype.Int),
		command.Required("b", paramtype.Int),
		command.Default("c", paramtype.Int, 0),
	))

	_, err := p.Parse(nil)
	var mr *MissingRequiredArgumentError
	if !errors.As(err, &mr) {
		t.Fatalf("Parse() error = %v, want MissingRequiredArgumentError", err)
	}
	if want := []string{"--a", "--b"}; !reflect.DeepEqual(mr.Flags, want) {
		t.Fatalf("missing = %#v, want %#v", mr.Flags, want)
	}

	_, err = p.Parse([]string{"--a", "1", "--b", "2", "--zzz", "3"})
	var uf *UnknownFlagError
	if !errors.As(err, &uf) || uf.Flag != "--zzz" {
		t.Fatalf("Parse error = %v, want UnknownFlagError for --zzz", err)
	}

	_, err = p.Parse([]string{"stray", "--a", "1"})
	if !errors.As(err, &uf) || uf.Flag != "stray" {
		t.Fatalf("Parse error = %v, want UnknownFlagError for stray", err)
	}
}

func TestInferredDefault(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Required("a", paramtype.Int),
		command.Inferred("b", 38),
	))
	if spec, _ := p.Spec("b"); !spec.Type.Equal(paramtype.Int) {
		t.Fatalf("b type = %s, want int", spec.Type)
	}
	got := mustParse(t, p, "--a", "1")
	if want := (command.Args{"a": 1, "b": 38}); !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestMissingType(t *testing.T) {
	for _, param := range []command.Param{command.Untyped("x"), command.Inferred("x", nil)} {
		_, err := Compile(command.New("cmd", noop, param))
		var mt *MissingTypeError
		if !errors.As(err, &mt) {
			t.Fatalf("Compile error = %v, want MissingTypeError", err)
		}
		msg := err.Error()
		if !strings.HasPrefix(msg, "error processing parameter 'x' of 'cmd' (") || !strings.Contains(msg, "compiler.noop") {
			t.Fatalf("error message = %q", msg)
		}
	}
}

func TestUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		typ  paramtype.Type
	}{
		{"union", paramtype.Union(paramtype.Int, paramtype.String)},
		{"bare list", paramtype.List()},
		{"two element list", paramtype.List(paramtype.Int, paramtype.Int)},
		{"empty tuple", paramtype.Tuple()},
		{"nested list", paramtype.List(paramtype.List(paramtype.Int))},
		{"ellipsis first", paramtype.Tuple(paramtype.Ellipsis, paramtype.Int)},
		{"none", paramtype.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(command.New("cmd", noop, command.Required("a", tt.typ)))
			var ut *UnsupportedTypeError
			if !errors.As(err, &ut) {
				t.Fatalf("Compile(%s) error = %v, want UnsupportedTypeError", tt.typ, err)
			}
		})
	}

	_, err := Compile(command.New("cmd", noop, command.Required("a", paramtype.Union(paramtype.Int, paramtype.String))))
	if !strings.Contains(err.Error(), "unions are not supported") {
		t.Fatalf("union error = %q", err)
	}
}

func TestOverrideWins(t *testing.T) {
	cmd := command.New("cmd", noop, command.Required("a", paramtype.String)).
		WithParameterTypes(map[string]paramtype.Type{"a": paramtype.Int})
	got := mustParse(t, mustCompile(t, cmd), "--a", "7")
	if got["a"] != 7 {
		t.Fatalf("a = %#v, want 7", got["a"])
	}
}

func TestOptionalScalar(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Required("o", paramtype.Optional(paramtype.Int))))
	spec, _ := p.Spec("o")
	if spec.Required || spec.Shape != ShapeOptionalScalar {
		t.Fatalf("spec = %+v, want optional scalar", spec)
	}
	if got := mustParse(t, p); got["o"] != nil {
		t.Fatalf("absent o = %#v, want nil", got["o"])
	}
	if _, ok := mustParse(t, p)["o"]; !ok {
		t.Fatalf("absent o missing from args")
	}
	if got := mustParse(t, p, "--o", "3"); got["o"] != 3 {
		t.Fatalf("o = %#v, want 3", got["o"])
	}
}

func TestOptionalList(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop, command.Required("xs", paramtype.Optional(paramtype.List(paramtype.String)))))
	spec, _ := p.Spec("xs")
	if spec.Required || spec.Shape != ShapeList {
		t.Fatalf("spec = %+v, want optional list", spec)
	}
}

func TestShortNames(t *testing.T) {
	cmd := command.New("cmd", noop,
		command.Default("count", paramtype.Int, 1),
		command.Default("verbose", paramtype.Bool, false),
	).WithShortNames(map[string]string{"count": "-c", "verbose": "v"})
	p := mustCompile(t, cmd)

	if spec, _ := p.Spec("verbose"); spec.Short != "-v" {
		t.Fatalf("verbose short = %q, want -v", spec.Short)
	}
	short := mustParse(t, p, "-v", "-c", "2")
	long := mustParse(t, p, "--verbose", "--count", "2")
	if !reflect.DeepEqual(short, long) {
		t.Fatalf("short = %#v, long = %#v", short, long)
	}
}

func TestConflictingFlags(t *testing.T) {
	tests := []struct {
		name  string
		cmd   command.Command
		param string
		other string
		flag  string
	}{
		{
			name: "duplicate alias",
			cmd: command.New("cmd", noop, command.Required("a", paramtype.Int), command.Required("b", paramtype.Int)).
				WithShortNames(map[string]string{"a": "x", "b": "x"}),
			param: "b", other: "a", flag: "-x",
		},
		{
			name: "alias shadows long flag",
			cmd: command.New("cmd", noop, command.Required("a", paramtype.Int), command.Required("b", paramtype.Int)).
				WithShortNames(map[string]string{"a": "--b"}),
			param: "a", other: "b", flag: "--b",
		},
		{
			name:  "duplicate parameter",
			cmd:   command.New("cmd", noop, command.Required("a", paramtype.Int), command.Required("a", paramtype.String)),
			param: "a", other: "a", flag: "--a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.cmd)
			var cf *ConflictingFlagError
			if !errors.As(err, &cf) {
				t.Fatalf("Compile error = %v, want ConflictingFlagError", err)
			}
			if cf.Param != tt.param || cf.Other != tt.other || cf.Flag != tt.flag {
				t.Fatalf("ConflictingFlagError = %+v", cf)
			}
		})
	}
}

func TestShortNameForUndeclaredParam(t *testing.T) {
	cmd := command.New("cmd", noop, command.Required("a", paramtype.Int)).
		WithShortNames(map[string]string{"zzz": "z"})
	_, err := Compile(cmd)
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Param != "zzz" {
		t.Fatalf("Compile error = %v, want CompileError for zzz", err)
	}
}

func TestTokenForms(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Required("a", paramtype.Int),
		command.Default("f", paramtype.Float, 0.0),
	))

	if got := mustParse(t, p, "--a=1"); got["a"] != 1 {
		t.Fatalf("inline a = %#v, want 1", got["a"])
	}
	if got := mustParse(t, p, "--a", "-3", "--f", "-0.5"); got["a"] != -3 || got["f"] != -0.5 {
		t.Fatalf("negative values = %#v", got)
	}
	if got := mustParse(t, p, "--a", "1", "--a", "2"); got["a"] != 2 {
		t.Fatalf("repeated a = %#v, want 2", got["a"])
	}

	_, err := p.Parse([]string{"--a", "1", "2"})
	var am *ArityMismatchError
	if !errors.As(err, &am) || am.Expected != "1" || am.Got != 2 {
		t.Fatalf("Parse(--a 1 2) error = %v, want ArityMismatchError", err)
	}

	_, err = p.Parse([]string{"--a", "x"})
	var vc *ValueCoercionError
	if !errors.As(err, &vc) || vc.Flag != "--a" || vc.Value != "x" || vc.Type != "int" {
		t.Fatalf("Parse(--a x) error = %v, want ValueCoercionError", err)
	}
}

func TestHelp(t *testing.T) {
	cmd := command.New("add", noop,
		command.Required("a", paramtype.Int),
		command.Inferred("b", 38),
		command.Default("verbose", paramtype.Bool, false),
	).WithDoc(`Adds two numbers.

	:param int a: the first number
	:param b: the second number`).WithShortNames(map[string]string{"verbose": "v"})
	p := mustCompile(t, cmd)

	if _, err := p.Parse([]string{"--a", "1", "-h"}); !errors.Is(err, ErrHelp) {
		t.Fatalf("Parse(-h) error = %v, want ErrHelp", err)
	}
	if got, want := p.Usage(), "usage: add [-h] --a A [--b B] [--verbose]"; got != want {
		t.Fatalf("Usage = %q, want %q", got, want)
	}
	if got, want := p.Description(), "add: Adds two numbers."; got != want {
		t.Fatalf("Description = %q, want %q", got, want)
	}
	help := p.Help()
	for _, want := range []string{
		"the first number (required, int)",
		"the second number (default: 38, int)",
		"-v, --verbose",
		"-h, --help",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("Help missing %q:\n%s", want, help)
		}
	}
}

func TestHelpFlagClaimedByParameter(t *testing.T) {
	cmd := command.New("cmd", noop, command.Default("host", paramtype.String, "")).
		WithShortNames(map[string]string{"host": "h"})
	p := mustCompile(t, cmd)
	if got := mustParse(t, p, "-h", "example.com"); got["host"] != "example.com" {
		t.Fatalf("host = %#v", got["host"])
	}
	if _, err := p.Parse([]string{"--help"}); !errors.Is(err, ErrHelp) {
		t.Fatalf("Parse(--help) error = %v, want ErrHelp", err)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	cmd := command.New("cmd", noop,
		command.Default("n", paramtype.Int, -5),
		command.Inferred("name", "x y"),
		command.Default("ratio", paramtype.Float, 0.1),
		command.Default("xs", paramtype.List(paramtype.Int), []int{1, 2}),
		command.Inferred("none", []string{}),
		command.Default("pair", paramtype.Tuple(paramtype.Float, paramtype.Float), [2]float64{0.5, -1}),
		command.Default("rest", paramtype.Tuple(paramtype.String, paramtype.Ellipsis), paramtype.Freeze("a", "b")),
		command.Default("verbose", paramtype.Bool, false),
		command.Default("opt", paramtype.Optional(paramtype.Int), nil),
	)
	p := mustCompile(t, cmd)

	defaults := command.Args{}
	for _, param := range cmd.Params() {
		defaults[param.Name] = param.Default
	}
	tokens, err := p.Render(defaults)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	got := mustParse(t, p, tokens...)
	if !reflect.DeepEqual(got, defaults) {
		t.Fatalf("Parse(Render(defaults)) = %#v, want %#v (tokens %q)", got, defaults, tokens)
	}
}

func TestRenderFlagLikeValues(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Required("s", paramtype.String),
		command.Default("xs", paramtype.List(paramtype.String), []string{"a"}),
	))
	tokens, err := p.Render(command.Args{"s": "--weird", "xs": []string{"a"}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if want := []string{"--s=--weird", "--xs", "a"}; !reflect.DeepEqual(tokens, want) {
		t.Fatalf("Render = %q, want %q", tokens, want)
	}
	if got := mustParse(t, p, tokens...); got["s"] != "--weird" {
		t.Fatalf("s = %#v", got["s"])
	}

	if _, err := p.Render(command.Args{"s": "ok", "xs": []string{"-x"}}); err == nil {
		t.Fatalf("Render accepted a list value that looks like a flag")
	}
	if _, err := p.Render(command.Args{"xs": []string{"a"}}); err == nil {
		t.Fatalf("Render accepted args without required s")
	}
}

func TestPointerDefault(t *testing.T) {
	five := 5
	p := mustCompile(t, command.New("cmd", noop,
		command.Inferred("p", &five),
		command.Inferred("q", (*int)(nil)),
	))
	if spec, _ := p.Spec("p"); spec.Shape != ShapeOptionalScalar || spec.Default != 5 {
		t.Fatalf("p spec = %+v, want optional scalar defaulting to 5", spec)
	}

	defaults := mustParse(t, p)
	if want := (command.Args{"p": 5, "q": nil}); !reflect.DeepEqual(defaults, want) {
		t.Fatalf("defaults = %#v, want %#v", defaults, want)
	}
	if got := mustParse(t, p, "--p", "7"); got["p"] != 7 {
		t.Fatalf("p = %#v, want 7", got["p"])
	}

	tokens, err := p.Render(defaults)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if want := []string{"--p", "5"}; !reflect.DeepEqual(tokens, want) {
		t.Fatalf("Render = %q, want %q", tokens, want)
	}
	if got := mustParse(t, p, tokens...); !reflect.DeepEqual(got, defaults) {
		t.Fatalf("Parse(Render(defaults)) = %#v, want %#v", got, defaults)
	}
	if help := p.Help(); !strings.Contains(help, "default: 5") {
		t.Fatalf("help does not show the dereferenced default:\n%s", help)
	}
}

func TestExponentValues(t *testing.T) {
	p := mustCompile(t, command.New("cmd", noop,
		command.Default("xs", paramtype.List(paramtype.Float), []float64{-1e-7, 2.5e10}),
		command.Default("f", paramtype.Float, 0.0),
	))

	got := mustParse(t, p, "--xs", "-1e5", "+3E-2", "--f", "-2.5e-3")
	if want := []float64{-1e5, 3e-2}; !reflect.DeepEqual(got["xs"], want) {
		t.Fatalf("xs = %#v, want %#v", got["xs"], want)
	}
	if got["f"] != -2.5e-3 {
		t.Fatalf("f = %#v, want -0.0025", got["f"])
	}

	defaults := command.Args{"xs": []float64{-1e-7, 2.5e10}, "f": -1e-9}
	tokens, err := p.Render(defaults)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got := mustParse(t, p, tokens...); !reflect.DeepEqual(got, defaults) {
		t.Fatalf("Parse(Render(defaults)) = %#v, want %#v (tokens %q)", got, defaults, tokens)
	}

	for _, tok := range []string{"-inf", "-NaN", "-e5", "-x"} {
		if !isFlag(tok) {
			t.Errorf("isFlag(%q) = false, want true", tok)
		}
	}
}
