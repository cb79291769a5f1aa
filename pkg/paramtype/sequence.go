// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paramtype

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Sequence is an immutable, ordered sequence of values. Variable-length
// tuple parameters are frozen into a Sequence after parsing.
type Sequence struct {
	items []any
}

var sequenceType = reflect.TypeOf(Sequence{})

// Freeze copies items into a new Sequence.
func Freeze(items ...any) Sequence {
	if len(items) == 0 {
		return Sequence{}
	}
	s := Sequence{items: make([]any, len(items))}
	copy(s.items, items)
	return s
}

// Len returns the number of values in s.
func (s Sequence) Len() int { return len(s.items) }

// At returns the i'th value.
func (s Sequence) At(i int) any { return s.items[i] }

// Values returns a copy of the values in s.
func (s Sequence) Values() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Equal reports whether s and o hold deeply equal values in the same
// order.
func (s Sequence) Equal(o Sequence) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if !reflect.DeepEqual(s.items[i], o.items[i]) {
			return false
		}
	}
	return true
}

func (s Sequence) String() string {
	parts := make([]string, len(s.items))
	for i, v := range s.items {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s Sequence) MarshalYAML() (any, error) {
	return s.Values(), nil
}

// SequenceOf returns the values of s as a []T. It reports false if any
// value is not a T.
func SequenceOf[T any](s Sequence) ([]T, bool) {
	out := make([]T, len(s.items))
	for i, v := range s.items {
		tv, ok := v.(T)
		if !ok {
			return nil, false
		}
		out[i] = tv
	}
	return out, true
}
