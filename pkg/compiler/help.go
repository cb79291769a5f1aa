// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/paramtype"
)

// Description returns "name: description", the heading of the help text.
func (p *Parser) Description() string {
	if p.description == "" {
		return p.name
	}
	return p.name + ": " + p.description
}

// Usage returns the one-line synopsis of the command.
func (p *Parser) Usage() string {
	var b strings.Builder
	b.WriteString("usage: ")
	b.WriteString(p.name)
	if _, claimed := p.index["-h"]; !claimed {
		b.WriteString(" [-h]")
	}
	for _, s := range p.specs {
		b.WriteByte(' ')
		if !s.Required {
			b.WriteByte('[')
		}
		b.WriteString(s.Flag)
		if m := metavar(s); m != "" {
			b.WriteByte(' ')
			b.WriteString(m)
		}
		if !s.Required {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Help returns the full help text: usage, description and one line per
// flag.
func (p *Parser) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\noptions:\n", p.Usage(), p.Description())
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	_, hClaimed := p.index["-h"]
	_, helpClaimed := p.index["--help"]
	switch {
	case !hClaimed && !helpClaimed:
		fmt.Fprintln(w, "  -h, --help\tshow this help message and exit")
	case !helpClaimed:
		fmt.Fprintln(w, "  --help\tshow this help message and exit")
	}
	for _, s := range p.specs {
		flags := s.Flag
		if s.Short != "" {
			flags = s.Short + ", " + s.Flag
		}
		if m := metavar(s); m != "" {
			flags += " " + m
		}
		fmt.Fprintf(w, "  %s\t%s\n", flags, helpLine(s))
	}
	w.Flush()
	return b.String()
}

func helpLine(s ParameterSpec) string {
	var notes []string
	switch {
	case s.Required:
		notes = append(notes, "required")
	case s.Shape != ShapeFlag && s.Default != nil:
		notes = append(notes, "default: "+formatDefault(s))
	}
	if s.Shape != ShapeFlag {
		notes = append(notes, s.Type.String())
	}
	line := s.Help
	if len(notes) > 0 {
		if line != "" {
			line += " "
		}
		line += "(" + strings.Join(notes, ", ") + ")"
	}
	return line
}

func formatDefault(s ParameterSpec) string {
	if s.Shape == ShapeScalar || s.Shape == ShapeOptionalScalar {
		return s.Elem.Format(s.Default)
	}
	vals, err := elements(s.Default)
	if err != nil {
		return fmt.Sprint(s.Default)
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = s.Elem.Format(v)
	}
	return strings.Join(parts, " ")
}

func metavar(s ParameterSpec) string {
	m := strings.ToUpper(strings.ReplaceAll(s.Name, "-", "_"))
	switch s.Shape {
	case ShapeFlag:
		return ""
	case ShapeList, ShapeVariableTuple:
		return m + " [" + m + " ...]"
	case ShapeFixedTuple:
		return strings.TrimSpace(strings.Repeat(m+" ", s.Arity))
	}
	return m
}

// Render is the inverse of Parse: it returns tokens that Parse turns back
// into args. Parameters whose value is nil or an unset flag are left out.
func (p *Parser) Render(args command.Args) ([]string, error) {
	var out []string
	for _, s := range p.specs {
		v := args[s.Name]
		if v == nil {
			if s.Required {
				return nil, &MissingRequiredArgumentError{Flags: []string{s.Flag}}
			}
			continue
		}
		switch s.Shape {
		case ShapeFlag:
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("value of %s is %T, want bool", s.Flag, v)
			}
			if b {
				out = append(out, s.Flag)
			}
		case ShapeScalar, ShapeOptionalScalar:
			tok := s.Elem.Format(v)
			if isFlag(tok) {
				out = append(out, s.Flag+"="+tok)
			} else {
				out = append(out, s.Flag, tok)
			}
		default:
			vals, err := elements(v)
			if err != nil {
				return nil, fmt.Errorf("value of %s: %w", s.Flag, err)
			}
			if len(vals) == 0 {
				if !s.Required && reflect.DeepEqual(v, s.Default) {
					continue
				}
				return nil, fmt.Errorf("%s needs at least one value", s.Flag)
			}
			out = append(out, s.Flag)
			for _, e := range vals {
				tok := s.Elem.Format(e)
				if isFlag(tok) {
					return nil, fmt.Errorf("value %q of %s would be read as a flag", tok, s.Flag)
				}
				out = append(out, tok)
			}
		}
	}
	return out, nil
}

// elements returns the items of a slice, array or Sequence.
func elements(v any) ([]any, error) {
	if s, ok := v.(paramtype.Sequence); ok {
		return s.Values(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T is not a collection", v)
}
