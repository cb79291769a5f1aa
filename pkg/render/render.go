// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render prints command results.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/yeetrun/autocli/pkg/paramtype"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	// Plain prints scalars with fmt and structured values as YAML.
	Plain Format = "plain"
	YAML  Format = "yaml"
	JSON  Format = "json"
)

// ParseFormat parses a --format value. The empty string is Plain.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return Plain, nil
	case Plain, YAML, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want plain, yaml or json)", s)
}

// Write renders v to w. A nil v prints nothing.
func Write(w io.Writer, v any, f Format) error {
	if v == nil {
		return nil
	}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		return writeYAML(w, v)
	case Plain, "":
		if structured(v) {
			return writeYAML(w, v)
		}
		_, err := fmt.Fprintln(w, v)
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// structured reports whether v is better shown as YAML than with fmt.
func structured(v any) bool {
	switch v.(type) {
	case fmt.Stringer, error, paramtype.Sequence:
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}
