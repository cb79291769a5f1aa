// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config stores the registered apps and where they live.
//
// The store is a JSON file, ~/.auto_cli unless AUTO_CLI_CONFIG_FILE says
// otherwise:
//
//	{
//	    "apps": {
//	        "calc": {
//	            "location": "/home/me/src/calc"
//	        }
//	    }
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yeetrun/autocli/pkg/fileutil"
	"github.com/yeetrun/autocli/pkg/manifest"
)

const (
	// EnvConfigFile overrides the location of the store.
	EnvConfigFile = "AUTO_CLI_CONFIG_FILE"

	defaultFileName = ".auto_cli"
)

// DefaultPath returns the store path from the environment, falling back
// to ~/.auto_cli.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultFileName), nil
}

// App is one registered app.
type App struct {
	Location string `json:"location"`
}

// UnmarshalJSON also accepts a bare location string, the form older
// stores used for the entries they created themselves.
func (a *App) UnmarshalJSON(b []byte) error {
	var loc string
	if err := json.Unmarshal(b, &loc); err == nil {
		a.Location = loc
		return nil
	}
	type plain App
	return json.Unmarshal(b, (*plain)(a))
}

type file struct {
	Apps map[string]App `json:"apps"`
}

// Store is the loaded app registry. Changes are kept in memory until
// Save.
type Store struct {
	path    string
	changed bool
	data    file
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: file{Apps: map[string]App{}}}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.data.Apps == nil {
		s.data.Apps = map[string]App{}
	}
	return s, nil
}

// OpenDefault opens the store at DefaultPath.
func OpenDefault() (*Store, error) {
	p, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(p)
}

func (s *Store) Path() string { return s.path }

// Changed reports whether the store has unsaved changes.
func (s *Store) Changed() bool { return s.changed }

// RegisterApp registers the app in location under name, replacing any
// earlier registration. An empty location means the working directory.
// The directory must contain a manifest.
func (s *Store) RegisterApp(name, location string) error {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return &InvalidAppNameError{Name: name}
	}
	if location == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		location = wd
	}
	location, err := filepath.Abs(location)
	if err != nil {
		return err
	}
	src := manifest.Path(location)
	ok, err := fileutil.Exists(src)
	if err != nil {
		return err
	}
	if !ok {
		return &MissingSourceError{App: name, Path: src}
	}
	if cur, ok := s.data.Apps[name]; ok && cur.Location == location {
		return nil
	}
	s.data.Apps[name] = App{Location: location}
	s.changed = true
	return nil
}

// DeleteApp removes the app called name.
func (s *Store) DeleteApp(name string) error {
	if _, ok := s.data.Apps[name]; !ok {
		return &UnknownAppError{Name: name}
	}
	delete(s.data.Apps, name)
	s.changed = true
	return nil
}

// AppLocation returns the directory of the app called name.
func (s *Store) AppLocation(name string) (string, error) {
	a, ok := s.data.Apps[name]
	if !ok {
		return "", &UnknownAppError{Name: name}
	}
	return a.Location, nil
}

// AppSource returns the manifest path of the app called name. It fails
// with *MissingSourceError if the manifest has been removed since the app
// was registered.
func (s *Store) AppSource(name string) (string, error) {
	loc, err := s.AppLocation(name)
	if err != nil {
		return "", err
	}
	src := manifest.Path(loc)
	ok, err := fileutil.Exists(src)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &MissingSourceError{App: name, Path: src}
	}
	return src, nil
}

// Apps returns the registered app names, sorted.
func (s *Store) Apps() []string {
	return slices.Sorted(maps.Keys(s.data.Apps))
}

// Save writes the store if it has changed.
func (s *Store) Save() error {
	if !s.changed {
		return nil
	}
	// encoding/json sorts map keys.
	b, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	s.changed = false
	return nil
}

// UnknownAppError is returned for an app name that is not registered.
type UnknownAppError struct {
	Name string
}

func (e *UnknownAppError) Error() string {
	return fmt.Sprintf("unknown app '%s'. Run `ac cli apps` to see which apps are registered", e.Name)
}

// MissingSourceError is returned when an app's manifest does not exist.
type MissingSourceError struct {
	App  string
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("could not find %s for app '%s'. Was it deleted?", e.Path, e.App)
}

// InvalidAppNameError is returned by RegisterApp for names that are
// empty or contain whitespace.
type InvalidAppNameError struct {
	Name string
}

func (e *InvalidAppNameError) Error() string {
	if e.Name == "" {
		return "app name must not be empty"
	}
	return fmt.Sprintf("spaces are not allowed in the app name %q", e.Name)
}
