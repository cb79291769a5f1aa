// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifest reads and writes autocli.toml, the file that marks a
// directory as an app.
//
//	name = "calc"
//	description = "Small calculator"
//	plugin = "calc.so"
//	api = "^1"
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/autocli/pkg/fileutil"
)

const (
	FileName = "autocli.toml"

	// DefaultAPI is the constraint used when a manifest has none.
	DefaultAPI = "^1"
)

type Manifest struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
	// Plugin is the path of the plugin artifact, relative to the
	// manifest's directory unless absolute.
	Plugin string `toml:"plugin"`
	// API constrains the host plugin API versions the app works with.
	API string `toml:"api,omitempty"`

	dir string
}

// Path returns the manifest path inside the app directory dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	m.dir = filepath.Dir(path)
	if m.API == "" {
		m.API = DefaultAPI
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the required fields and the API constraint syntax.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("name is required"))
	} else if strings.ContainsAny(m.Name, " \t") {
		errs = append(errs, fmt.Errorf("name %q contains whitespace", m.Name))
	}
	if m.Plugin == "" {
		errs = append(errs, errors.New("plugin is required"))
	}
	if m.API != "" {
		if _, err := semver.NewConstraint(m.API); err != nil {
			errs = append(errs, fmt.Errorf("invalid api constraint %q: %w", m.API, err))
		}
	}
	return errors.Join(errs...)
}

// Dir returns the directory the manifest was loaded from.
func (m *Manifest) Dir() string { return m.dir }

// PluginPath returns the absolute path of the plugin artifact.
func (m *Manifest) PluginPath() string {
	if filepath.IsAbs(m.Plugin) {
		return m.Plugin
	}
	return filepath.Join(m.dir, m.Plugin)
}

// CheckAPI reports whether the host API version satisfies the manifest's
// constraint.
func (m *Manifest) CheckAPI(host string) error {
	api := m.API
	if api == "" {
		api = DefaultAPI
	}
	c, err := semver.NewConstraint(api)
	if err != nil {
		return fmt.Errorf("invalid api constraint %q: %w", api, err)
	}
	v, err := semver.NewVersion(host)
	if err != nil {
		return fmt.Errorf("invalid host api version %q: %w", host, err)
	}
	if !c.Check(v) {
		return &IncompatibleAPIError{App: m.Name, Constraint: api, Host: host}
	}
	return nil
}

// Write encodes m to path.
func Write(path string, m *Manifest) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// IncompatibleAPIError is returned when an app was built against a plugin
// API the host does not provide.
type IncompatibleAPIError struct {
	App        string
	Constraint string
	Host       string
}

func (e *IncompatibleAPIError) Error() string {
	return fmt.Sprintf("app '%s' requires plugin api %s, host provides %s", e.App, e.Constraint, e.Host)
}
