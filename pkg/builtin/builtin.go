// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package builtin implements the cli app, which manages the other apps.
// Its commands are ordinary commands and go through the same compiler
// as any plugin's.
package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/compiler"
	"github.com/yeetrun/autocli/pkg/config"
	"github.com/yeetrun/autocli/pkg/fileutil"
	"github.com/yeetrun/autocli/pkg/manifest"
	"github.com/yeetrun/autocli/pkg/paramtype"
	"github.com/yeetrun/autocli/pkg/registry"
	"golang.org/x/sync/errgroup"
)

// AppName is the name the cli app is available under.
const AppName = "cli"

// Env is what the cli commands operate on.
type Env struct {
	Store *config.Store
	// Load loads the commands of an app.
	Load func(ctx context.Context, app string) (*registry.Registry, error)
	// Apps lists every loadable app. If nil, the apps of Store are used.
	Apps func() []string
}

// Commands returns the commands of the cli app.
func Commands(env Env) []command.Command {
	return []command.Command{
		command.New("register", env.register,
			command.Required("name", paramtype.String),
			command.Default("location", paramtype.Optional(paramtype.String), nil),
		).WithShortNames(map[string]string{"name": "n", "location": "l"}).WithDoc(`Register an app with autocli.

		:param str name: name to run the app under
		:param str location: app directory containing autocli.toml (default: working directory)`),

		command.New("delete", env.delete,
			command.Required("name", paramtype.String),
		).WithShortNames(map[string]string{"name": "n"}).WithDoc(`Remove a registered app.

		:param str name: the app to remove`),

		command.New("apps", env.apps).WithDoc(`List the registered apps.`),

		command.New("commands", env.commands,
			command.Required("app", paramtype.String),
		).WithDoc(`List the commands of an app.

		:param str app: the app to inspect`),

		command.New("check", env.check,
			command.Default("app", paramtype.List(paramtype.String), []string{}),
		).WithDoc(`Compile every command of the given apps and report schema errors.

		:param app: apps to check (default: all apps)`),

		command.New("init", initApp,
			command.Required("name", paramtype.String),
			command.Default("plugin", paramtype.Optional(paramtype.String), nil),
			command.Inferred("api", manifest.DefaultAPI),
			command.Default("dir", paramtype.Optional(paramtype.String), nil),
		).WithDoc(`Create autocli.toml for a new app.

		:param str name: the app name
		:param str plugin: plugin artifact path (default: <name>.so)
		:param str api: plugin api constraint
		:param str dir: app directory (default: working directory)`),
	}
}

func (env Env) register(_ context.Context, args command.Args) (any, error) {
	name := command.Get[string](args, "name")
	if err := env.Store.RegisterApp(name, command.Get[string](args, "location")); err != nil {
		return nil, err
	}
	if err := env.Store.Save(); err != nil {
		return nil, err
	}
	loc, err := env.Store.AppLocation(name)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Registered app '%s' at %s", name, loc), nil
}

func (env Env) delete(_ context.Context, args command.Args) (any, error) {
	name := command.Get[string](args, "name")
	if err := env.Store.DeleteApp(name); err != nil {
		return nil, err
	}
	if err := env.Store.Save(); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Deleted app '%s'", name), nil
}

func (env Env) apps(context.Context, command.Args) (any, error) {
	if env.Apps != nil {
		return env.Apps(), nil
	}
	return env.Store.Apps(), nil
}

func (env Env) commands(ctx context.Context, args command.Args) (any, error) {
	reg, err := env.Load(ctx, command.Get[string](args, "app"))
	if err != nil {
		return nil, err
	}
	return reg.Help(), nil
}

// checkLimit bounds how many apps check loads at once.
const checkLimit = 4

func (env Env) check(ctx context.Context, args command.Args) (any, error) {
	apps := command.Get[[]string](args, "app")
	if len(apps) == 0 {
		if env.Apps != nil {
			apps = env.Apps()
		} else {
			apps = env.Store.Apps()
		}
	}
	report := make([]string, len(apps))
	failed := make([]bool, len(apps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(checkLimit)
	for i, app := range apps {
		g.Go(func() error {
			reg, err := env.Load(ctx, app)
			if err != nil {
				report[i], failed[i] = fmt.Sprintf("%s: %v", app, err), true
				return nil
			}
			var errs []string
			for _, c := range reg.Commands() {
				if _, err := compiler.Compile(c); err != nil {
					errs = append(errs, err.Error())
				}
			}
			if len(errs) > 0 {
				report[i], failed[i] = app+": "+strings.Join(errs, "; "), true
				return nil
			}
			report[i] = fmt.Sprintf("%s: ok (%d commands)", app, reg.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if slices.Contains(failed, true) {
		return nil, &CheckError{Report: report}
	}
	return report, nil
}

// CheckError is returned by check when an app fails to load or has
// commands that do not compile.
type CheckError struct {
	Report []string
}

func (e *CheckError) Error() string {
	return "check failed:\n" + strings.Join(e.Report, "\n")
}

func initApp(_ context.Context, args command.Args) (any, error) {
	name := command.Get[string](args, "name")
	dir := command.Get[string](args, "dir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	plugin := command.Get[string](args, "plugin")
	if plugin == "" {
		plugin = name + ".so"
	}
	m := &manifest.Manifest{
		Name:   name,
		Plugin: plugin,
		API:    command.Get[string](args, "api"),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	path := manifest.Path(dir)
	exists, err := fileutil.Exists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s already exists", path)
	}
	if err := manifest.Write(path, m); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return "Wrote " + abs, nil
}
