// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"maps"
	"slices"
)

// Args maps parameter names to their coerced values.
type Args map[string]any

// Has reports whether name has a non-nil value.
func (a Args) Has(name string) bool {
	return a[name] != nil
}

// Names returns the parameter names in a in sorted order.
func (a Args) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// Get returns the value of name as a T. It returns the zero T if the
// value is absent or of another type.
func Get[T any](a Args, name string) T {
	v, _ := Lookup[T](a, name)
	return v
}

// Lookup is like Get but also reports whether a T was found.
func Lookup[T any](a Args, name string) (T, bool) {
	v, ok := a[name].(T)
	return v, ok
}
