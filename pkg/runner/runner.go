// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner executes commands from raw argument tokens.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yeetrun/autocli/pkg/clilog"
	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/compiler"
	"github.com/yeetrun/autocli/pkg/registry"
	"github.com/yeetrun/autocli/pkg/render"
)

type Runner struct {
	Log    *slog.Logger
	Out    io.Writer
	Format render.Format
}

// Run compiles cmd, parses argv and invokes it. The result has the
// command's return type applied.
func (r *Runner) Run(ctx context.Context, cmd command.Command, argv []string) (any, error) {
	log := clilog.OrDiscard(r.Log).With("run", uuid.NewString())
	p, err := compiler.Compile(cmd)
	if err != nil {
		return nil, err
	}
	args, err := p.Parse(argv)
	if errors.Is(err, compiler.ErrHelp) {
		return nil, &HelpError{Text: p.Help()}
	}
	if err != nil {
		return nil, &UsageError{Usage: p.Usage(), Err: err}
	}
	log.DebugContext(ctx, "invoking command", "command", cmd.Name(), "func", cmd.FuncName(), "args", args.Names())
	return cmd.Invoke(ctx, args)
}

// RunAndPrint is Run followed by rendering a non-nil result to r.Out.
func (r *Runner) RunAndPrint(ctx context.Context, cmd command.Command, argv []string) error {
	res, err := r.Run(ctx, cmd, argv)
	if err != nil {
		return err
	}
	return render.Write(r.Out, res, r.Format)
}

// Resolve picks the command named by argv[0] and returns it with the
// remaining tokens.
func Resolve(reg *registry.Registry, argv []string) (command.Command, []string, error) {
	if len(argv) == 0 {
		return command.Command{}, nil, &NoCommandError{Available: reg.Help()}
	}
	switch argv[0] {
	case "-h", "--help", "help":
		return command.Command{}, nil, &HelpError{Text: "Available commands:\n" + reg.Help()}
	}
	cmd, err := reg.Lookup(argv[0])
	if err != nil {
		return command.Command{}, nil, err
	}
	return cmd, argv[1:], nil
}

// Dispatch resolves the command named by argv[0] in reg and runs it with
// the rest of argv.
func (r *Runner) Dispatch(ctx context.Context, reg *registry.Registry, argv []string) error {
	cmd, rest, err := Resolve(reg, argv)
	if err != nil {
		return err
	}
	return r.RunAndPrint(ctx, cmd, rest)
}

// NoCommandError is returned by Dispatch when argv is empty.
type NoCommandError struct {
	Available string
}

func (e *NoCommandError) Error() string {
	return "No command given. Available commands:\n" + e.Available
}

// HelpError carries help text that was asked for. It matches
// compiler.ErrHelp with errors.Is.
type HelpError struct {
	Text string
}

func (e *HelpError) Error() string { return e.Text }

func (e *HelpError) Unwrap() error { return compiler.ErrHelp }

// UsageError wraps a parse error with the command's usage line.
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%v\n%s", e.Err, e.Usage)
}

func (e *UsageError) Unwrap() error { return e.Err }
