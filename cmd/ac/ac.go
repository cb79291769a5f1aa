// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The ac command runs the commands of registered apps:
//
//	ac [global flags] <app> <command> [--flag value ...]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/autocli/pkg/builtin"
	"github.com/yeetrun/autocli/pkg/clilog"
	"github.com/yeetrun/autocli/pkg/command"
	"github.com/yeetrun/autocli/pkg/config"
	"github.com/yeetrun/autocli/pkg/loader"
	"github.com/yeetrun/autocli/pkg/registry"
	"github.com/yeetrun/autocli/pkg/render"
	"github.com/yeetrun/autocli/pkg/runner"
	"golang.org/x/term"
)

const usage = "Usage: ac [--config PATH] [--format plain|yaml|json] [--no-color] [-v] [--log-file PATH] <app> <command> [parameters]"

type globalFlagsParsed struct {
	Config  string `flag:"config" help:"Path of the app registry (AUTO_CLI_CONFIG_FILE)"`
	Format  string `flag:"format" help:"Output format: plain, yaml or json"`
	NoColor bool   `flag:"no-color" help:"Disable colored output"`
	Verbose bool   `flag:"verbose" short:"v" help:"Log debug output to stderr"`
	LogFile string `flag:"log-file" help:"Also write logs to this file"`
}

// globalValueFlags are the global flags that take a value. Keep in sync
// with globalFlagsParsed.
var globalValueFlags = map[string]bool{
	"config":   true,
	"format":   true,
	"log-file": true,
}

var errGlobalHelp = errors.New("help requested")

// splitGlobalArgs splits args into the global flags before the app name
// and everything from the app name on. Flags after the app name belong to
// the command.
func splitGlobalArgs(args []string) (global, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args[:i], args[i+1:]
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return args[:i], args[i:]
		}
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if globalValueFlags[name] {
			i++
		}
	}
	return args, nil
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	global, rest := splitGlobalArgs(args)
	for _, a := range global {
		if a == "-h" || a == "--help" {
			return globalFlagsParsed{}, nil, errGlobalHelp
		}
	}
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](global, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	if len(result.RemainingArgs) > 0 {
		return globalFlagsParsed{}, nil, fmt.Errorf("unknown flag: %s", result.RemainingArgs[0])
	}
	return result.Flags, rest, nil
}

var isTerminalFn = term.IsTerminal

func setupColor(noColor bool, w io.Writer) {
	if noColor {
		color.NoColor = true
		return
	}
	f, ok := w.(*os.File)
	if !ok || !isTerminalFn(int(f.Fd())) {
		color.NoColor = true
	}
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, color.RedString("Error:"), err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes ac with args and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global, rest, err := parseGlobalFlags(args)
	if errors.Is(err, errGlobalHelp) {
		fmt.Fprintln(stdout, usage)
		return 0
	}
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	setupColor(global.NoColor, stderr)

	log, closeLog := clilog.New(clilog.Options{Verbose: global.Verbose, File: global.LogFile, Stderr: stderr})
	defer closeLog()

	format, err := render.ParseFormat(global.Format)
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	path := global.Config
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			printCLIError(stderr, err)
			return 1
		}
	}
	store, err := config.Open(path)
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	log.Debug("opened app registry", "path", store.Path())

	ld := newLoader(store, log)
	if len(rest) == 0 {
		printCLIError(stderr, fmt.Errorf("did not understand command.\n%s\n\nAvailable apps:\n  %s", usage, strings.Join(ld.Apps(), "\n  ")))
		return 1
	}

	app := rest[0]
	reg, err := ld.Load(ctx, app, registry.New())
	if loader.IsNotFound(err) {
		err = fmt.Errorf("%w\nAvailable apps: %s", err, strings.Join(ld.Apps(), ", "))
	}
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	r := &runner.Runner{Log: log, Out: stdout, Format: format}
	err = r.Dispatch(ctx, reg, rest[1:])
	var he *runner.HelpError
	if errors.As(err, &he) {
		fmt.Fprintln(stdout, he.Text)
		return 0
	}
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	return 0
}

// newLoader returns a loader for the apps in store, with the cli app
// built in.
func newLoader(store *config.Store, log *slog.Logger) *loader.Loader {
	ld := loader.New(store, log)
	ld.RegisterBuiltin(builtin.AppName, func() []command.Command {
		return builtin.Commands(builtin.Env{
			Store: store,
			Load: func(ctx context.Context, app string) (*registry.Registry, error) {
				return ld.Load(ctx, app, registry.New())
			},
			Apps: ld.Apps,
		})
	})
	return ld
}
