// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package funcdoc extracts a description and per-parameter help text from
// a command's doc block.
//
// Parameters are documented with reST-style field lists:
//
//	Adds two numbers.
//
//	:param int a: the first number
//	:param b: the second number
//
// Only the first line of each field is used; continuation lines are not
// merged.
package funcdoc

import (
	"strings"
)

// Marker introduces a parameter field.
const Marker = ":param"

// FunctionDoc is the parsed form of a doc block.
type FunctionDoc struct {
	Description string
	ParamDocs   map[string]string
}

// Parse splits doc into a description and parameter help. It never fails:
// malformed fields are skipped.
func Parse(doc string) FunctionDoc {
	fd := FunctionDoc{ParamDocs: map[string]string{}}
	if strings.TrimSpace(doc) == "" {
		return fd
	}
	idx := firstMarker(doc)
	if idx < 0 {
		fd.Description = strings.TrimSpace(doc)
		return fd
	}
	fd.Description = normalizeSpace(doc[:idx])
	for _, line := range strings.Split(doc[idx:], "\n") {
		name, help, ok := parseField(line)
		if !ok {
			continue
		}
		fd.ParamDocs[name] = help
	}
	return fd
}

// Summary returns the single-line description of doc.
func Summary(doc string) string {
	return normalizeSpace(Parse(doc).Description)
}

// firstMarker returns the offset of the first line that starts with
// Marker, ignoring indentation.
func firstMarker(doc string) int {
	off := 0
	for _, line := range strings.SplitAfter(doc, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, Marker) {
			return off + len(line) - len(trimmed)
		}
		off += len(line)
	}
	return -1
}

func parseField(line string) (name, help string, ok bool) {
	line = strings.TrimSpace(line)
	rest, found := strings.CutPrefix(line, Marker)
	if !found {
		return "", "", false
	}
	prefix, desc, found := strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return "", "", false
	}
	// An optional type hint may precede the name.
	return fields[len(fields)-1], strings.TrimSpace(desc), true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
