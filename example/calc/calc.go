// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command calc is an example app. Build it as a plugin and register it:
//
//	go build -buildmode=plugin -o calc.so ./example/calc
//	ac cli register --name calc --location ./example/calc
//	ac calc add --a 4
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

// Commands is the entry point the loader looks up.
func Commands() []command.Command {
	return []command.Command{
		command.FromFunc(Add,
			command.Required("a", paramtype.Int),
			command.Inferred("b", 38),
		).WithDoc(`Adds two numbers.

		:param int a: the first number
		:param int b: the second number`),

		command.FromFunc(Sum,
			command.Required("values", paramtype.List(paramtype.Float)),
			command.Default("round", paramtype.Bool, false),
		).WithShortNames(map[string]string{"round": "r"}).WithDoc(`Sums a list of numbers.

		:param values: numbers to sum
		:param round: round the result to the nearest integer`),

		command.FromFunc(Scale,
			command.Required("point", paramtype.Tuple(paramtype.Int, paramtype.Int)),
			command.Inferred("factor", 2),
		).WithDoc(`Scales a 2D point.

		:param point: x and y
		:param factor: the multiplier`),

		command.FromFunc(Reverse,
			command.Required("items", paramtype.Tuple(paramtype.String, paramtype.Ellipsis)),
		).WithDoc(`Reverses its arguments.`),

		command.FromFunc(Greet,
			command.Untyped("name"),
			command.Default("times", paramtype.Optional(paramtype.Int), nil),
		).WithParameterTypes(map[string]paramtype.Type{"name": paramtype.String}).WithReturnType(func(v any) (any, error) {
			return fmt.Sprintf("%s!", v), nil
		}).WithDoc(`Greets someone.

		:param name: who to greet
		:param times: how often (default: once)`),

		command.FromFunc(Sleep,
			command.Inferred("d", time.Second),
		).WithDoc(`Sleeps, then reports how long.

		:param d: how long to sleep`),
	}
}

func Add(_ context.Context, args command.Args) (any, error) {
	return command.Get[int](args, "a") + command.Get[int](args, "b"), nil
}

func Sum(_ context.Context, args command.Args) (any, error) {
	var total float64
	for _, v := range command.Get[[]float64](args, "values") {
		total += v
	}
	if command.Get[bool](args, "round") {
		return int64(total + 0.5), nil
	}
	return total, nil
}

func Scale(_ context.Context, args command.Args) (any, error) {
	p := command.Get[[2]int](args, "point")
	f := command.Get[int](args, "factor")
	return [2]int{p[0] * f, p[1] * f}, nil
}

func Reverse(_ context.Context, args command.Args) (any, error) {
	items, _ := paramtype.SequenceOf[string](command.Get[paramtype.Sequence](args, "items"))
	out := make([]any, len(items))
	for i, s := range items {
		out[len(items)-1-i] = s
	}
	return paramtype.Freeze(out...), nil
}

func Greet(_ context.Context, args command.Args) (any, error) {
	name := command.Get[string](args, "name")
	times, ok := command.Lookup[int](args, "times")
	if !ok {
		times = 1
	}
	s := "Hello, " + name
	for i := 1; i < times; i++ {
		s += ", " + name
	}
	return s, nil
}

func Sleep(ctx context.Context, args command.Args) (any, error) {
	d := command.Get[time.Duration](args, "d")
	start := time.Now()
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return time.Since(start).Round(time.Millisecond), nil
}

func main() {}
