// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader turns an app name into a populated command registry.
//
// An app is either builtin, registered in-process with RegisterBuiltin,
// or a Go plugin described by the app's manifest. A plugin exports its
// command table as
//
//	func Commands() []command.Command
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"plugin"
	"slices"

	"github.com/yeetrun/autocli/pkg/clilog"
	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/config"
	"github.com/yeetrun/autocli/pkg/manifest"
	"github.com/yeetrun/autocli/pkg/registry"
)

// APIVersion is the version of the plugin API this host implements.
// Manifests constrain it with their api field.
const APIVersion = "1.0.0"

// Symbol is the name a plugin exports its EntryPoint under.
const Symbol = "Commands"

// EntryPoint returns the commands of an app.
type EntryPoint func() []command.Command

type Loader struct {
	store    *config.Store
	builtins map[string]EntryPoint
	log      *slog.Logger

	// open loads the entry point of the plugin at path.
	open func(path string) (EntryPoint, error)
}

// New returns a Loader that resolves apps through store. store may be nil
// if only builtin apps are used.
func New(store *config.Store, log *slog.Logger) *Loader {
	return &Loader{
		store:    store,
		builtins: map[string]EntryPoint{},
		log:      clilog.OrDiscard(log),
		open:     openPlugin,
	}
}

// RegisterBuiltin makes entry available as the app called name. Builtin
// apps take precedence over registered ones.
func (l *Loader) RegisterBuiltin(name string, entry EntryPoint) {
	l.builtins[name] = entry
}

// Apps returns the names of all loadable apps, sorted.
func (l *Loader) Apps() []string {
	names := maps.Clone(l.builtins)
	if l.store != nil {
		for _, n := range l.store.Apps() {
			if _, ok := names[n]; !ok {
				names[n] = nil
			}
		}
	}
	return slices.Sorted(maps.Keys(names))
}

// Load registers the commands of app into reg and returns it. A nil reg
// is replaced by a new Registry.
func (l *Loader) Load(ctx context.Context, app string, reg *registry.Registry) (*registry.Registry, error) {
	if reg == nil {
		reg = registry.New()
	}
	entry, err := l.entryPoint(ctx, app)
	if err != nil {
		return nil, err
	}
	cmds := entry()
	for _, c := range cmds {
		if c.Name() == "" {
			return nil, fmt.Errorf("app '%s' has a command without a name", app)
		}
	}
	reg.Register(cmds...)
	l.log.DebugContext(ctx, "loaded app", "app", app, "commands", len(cmds))
	return reg, nil
}

func (l *Loader) entryPoint(ctx context.Context, app string) (EntryPoint, error) {
	if entry, ok := l.builtins[app]; ok {
		return entry, nil
	}
	if l.store == nil {
		return nil, &config.UnknownAppError{Name: app}
	}
	src, err := l.store.AppSource(app)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(src)
	if err != nil {
		return nil, err
	}
	if err := m.CheckAPI(APIVersion); err != nil {
		return nil, err
	}
	path := m.PluginPath()
	l.log.DebugContext(ctx, "opening plugin", "app", app, "path", path)
	return l.open(path)
}

func openPlugin(path string) (EntryPoint, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}
	sym, err := p.Lookup(Symbol)
	if err != nil {
		return nil, &MissingEntryPointError{Path: path, Err: err}
	}
	switch f := sym.(type) {
	case func() []command.Command:
		return f, nil
	case *func() []command.Command:
		return *f, nil
	case *EntryPoint:
		return *f, nil
	}
	return nil, &MissingEntryPointError{Path: path, Err: fmt.Errorf("%s has type %T", Symbol, sym)}
}

// MissingEntryPointError is returned when a plugin does not export a
// usable Commands symbol.
type MissingEntryPointError struct {
	Path string
	Err  error
}

func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("plugin %s does not export %s: %v", e.Path, Symbol, e.Err)
}

func (e *MissingEntryPointError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the app is unknown or its files
// are gone.
func IsNotFound(err error) bool {
	var ua *config.UnknownAppError
	var ms *config.MissingSourceError
	return errors.As(err, &ua) || errors.As(err, &ms)
}
