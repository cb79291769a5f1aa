// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/config"
	"github.com/yeetrun/autocli/pkg/manifest"
	"github.com/yeetrun/autocli/pkg/registry"
)

func calcCommands() []command.Command {
	return []command.Command{
		command.New("add", nil).WithDoc("Adds."),
		command.New("sub", nil).WithDoc("Subtracts."),
	}
}

// newStore returns a store with one app, calc, whose manifest carries
// the given api constraint.
func newStore(t *testing.T, api string) (*config.Store, string) {
	t.Helper()
	dir := t.TempDir()
	m := &manifest.Manifest{Name: "calc", Plugin: "calc.so", API: api}
	if err := manifest.Write(manifest.Path(dir), m); err != nil {
		t.Fatal(err)
	}
	s, err := config.Open(filepath.Join(t.TempDir(), "c.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterApp("calc", dir); err != nil {
		t.Fatal(err)
	}
	return s, dir
}

func TestLoadPlugin(t *testing.T) {
	store, dir := newStore(t, "^1")
	l := New(store, nil)
	var opened string
	l.open = func(path string) (EntryPoint, error) {
		opened = path
		return calcCommands, nil
	}

	reg := registry.New()
	got, err := l.Load(context.Background(), "calc", reg)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != reg {
		t.Fatalf("Load returned a different registry")
	}
	if want := filepath.Join(dir, "calc.so"); opened != want {
		t.Fatalf("opened %q, want %q", opened, want)
	}
	if names := reg.Names(); !reflect.DeepEqual(names, []string{"add", "sub"}) {
		t.Fatalf("Names = %#v", names)
	}
}

func TestLoadBuiltinFirst(t *testing.T) {
	store, _ := newStore(t, "^1")
	l := New(store, nil)
	l.open = func(string) (EntryPoint, error) {
		t.Fatalf("plugin opened for a builtin app")
		return nil, nil
	}
	l.RegisterBuiltin("calc", func() []command.Command {
		return []command.Command{command.New("builtin", nil)}
	})
	reg, err := l.Load(context.Background(), "calc", nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if names := reg.Names(); !reflect.DeepEqual(names, []string{"builtin"}) {
		t.Fatalf("Names = %#v", names)
	}
}

func TestLoadIncompatibleAPI(t *testing.T) {
	store, _ := newStore(t, "^2")
	l := New(store, nil)
	l.open = func(string) (EntryPoint, error) { return calcCommands, nil }
	_, err := l.Load(context.Background(), "calc", nil)
	var ia *manifest.IncompatibleAPIError
	if !errors.As(err, &ia) {
		t.Fatalf("Load error = %v, want IncompatibleAPIError", err)
	}
}

func TestLoadUnknownAndMissing(t *testing.T) {
	store, dir := newStore(t, "^1")
	l := New(store, nil)

	_, err := l.Load(context.Background(), "nope", nil)
	if !IsNotFound(err) {
		t.Fatalf("Load(nope) error = %v, want not found", err)
	}

	if err := os.Remove(manifest.Path(dir)); err != nil {
		t.Fatal(err)
	}
	_, err = l.Load(context.Background(), "calc", nil)
	var ms *config.MissingSourceError
	if !errors.As(err, &ms) || !IsNotFound(err) {
		t.Fatalf("Load(calc) error = %v, want MissingSourceError", err)
	}

	_, err = New(nil, nil).Load(context.Background(), "calc", nil)
	if !IsNotFound(err) {
		t.Fatalf("Load without store error = %v, want not found", err)
	}
}

func TestLoadRejectsUnnamedCommand(t *testing.T) {
	l := New(nil, nil)
	l.RegisterBuiltin("bad", func() []command.Command {
		return []command.Command{command.New("", nil)}
	})
	if _, err := l.Load(context.Background(), "bad", nil); err == nil {
		t.Fatalf("Load accepted a command without a name")
	}
}

func TestApps(t *testing.T) {
	store, _ := newStore(t, "^1")
	l := New(store, nil)
	l.RegisterBuiltin("cli", calcCommands)
	l.RegisterBuiltin("calc", calcCommands)
	if got := l.Apps(); !reflect.DeepEqual(got, []string{"calc", "cli"}) {
		t.Fatalf("Apps = %#v", got)
	}
}

func TestOpenPluginMissingFile(t *testing.T) {
	if _, err := openPlugin(filepath.Join(t.TempDir(), "absent.so")); err == nil {
		t.Fatalf("openPlugin succeeded for a missing file")
	}
}
