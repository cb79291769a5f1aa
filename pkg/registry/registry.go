// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry holds the commands of one app.
//
// A Registry is populated once, typically by the loader, and then read.
// It is not safe for concurrent writers.
package registry

import (
	"fmt"
	"strings"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/funcdoc"
)

// Registry maps command names to commands and remembers the order in
// which names were first registered.
type Registry struct {
	order []string
	cmds  map[string]command.Command
}

func New() *Registry {
	return &Registry{cmds: map[string]command.Command{}}
}

// Register adds cmds. A command whose name is already registered replaces
// the earlier one and keeps its position in the listing.
func (r *Registry) Register(cmds ...command.Command) {
	for _, c := range cmds {
		if _, ok := r.cmds[c.Name()]; !ok {
			r.order = append(r.order, c.Name())
		}
		r.cmds[c.Name()] = c
	}
}

// Lookup returns the command called name.
func (r *Registry) Lookup(name string) (command.Command, error) {
	c, ok := r.cmds[name]
	if !ok {
		return command.Command{}, &UnknownCommandError{Name: name, Available: r.Help()}
	}
	return c, nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []command.Command {
	out := make([]command.Command, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.cmds[n])
	}
	return out
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Help lists every command with the summary of its doc block, names
// padded to a common width:
//
//	add         Adds two numbers.
//	multiply    Multiplies two numbers.
func (r *Registry) Help() string {
	width := 0
	for _, n := range r.order {
		width = max(width, len(n))
	}
	var b strings.Builder
	for i, n := range r.order {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := fmt.Sprintf("%-*s    %s", width, n, funcdoc.Summary(r.cmds[n].Doc()))
		b.WriteString(strings.TrimRight(line, " "))
	}
	return b.String()
}

// UnknownCommandError is returned by Lookup for a name that is not
// registered. Available is the Help listing.
type UnknownCommandError struct {
	Name      string
	Available string
}

func (e *UnknownCommandError) Error() string {
	if e.Available == "" {
		return fmt.Sprintf("unknown command '%s'", e.Name)
	}
	return fmt.Sprintf("unknown command '%s'. Available commands:\n%s", e.Name, e.Available)
}
