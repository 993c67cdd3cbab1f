// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the engine configuration from a YAML file.
//
// The configuration names the external tools the pipeline drives: the model
// interface jar, the XML database runtime libraries, and optionally the java
// and Xvfb executables. Values are passed explicitly into the components that
// need them; there is no process-wide configuration singleton.
package config

import (
	"errors"
	"time"

	"github.com/gcamkit/queryrun/internal/strutil"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

var (
	// ErrRead is returned when the configuration file cannot be read.
	ErrRead = errors.New("failed to read configuration file")
	// ErrParse is returned when the configuration file cannot be parsed.
	ErrParse = errors.New("failed to parse configuration file")
	// ErrMissingPath is returned when a required engine path is empty.
	ErrMissingPath = errors.New("configuration is missing a required engine path")
)

// FS is the filesystem abstraction used for file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// Duration is a time.Duration that unmarshals from YAML strings like "30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

// Flag is a boolean that accepts the loose true/false synonyms found in
// legacy driver configuration files ("T", "No", "0", ...).
type Flag bool

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (f *Flag) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}

	*f = Flag(strutil.ParseBool(s))

	return nil
}

// Config holds the external engine configuration.
type Config struct {
	// ModelInterface is the path to the model interface jar.
	ModelInterface string `yaml:"model_interface"`
	// DBXMLLib is the directory holding the XML database runtime libraries.
	DBXMLLib string `yaml:"dbxml_lib"`
	// Java is the java executable. Empty means "java" from PATH.
	Java string `yaml:"java,omitempty"`
	// Xvfb is the virtual display server executable. Empty means "Xvfb" from PATH.
	Xvfb string `yaml:"xvfb,omitempty"`
	// InputDir is the base directory bare query-file references resolve against.
	InputDir string `yaml:"input_dir"`
	// Timeout bounds a single engine invocation. Zero means no timeout.
	Timeout Duration `yaml:"timeout,omitempty"`
	// ContinueOnError keeps processing remaining batch items after one fails.
	ContinueOnError Flag `yaml:"continue_on_error,omitempty"`
	// StrictExit treats a non-zero engine exit status as a failure.
	StrictExit Flag `yaml:"strict_exit,omitempty"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := afero.ReadFile(FS, path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	return Parse(b)
}

// Parse parses a configuration document.
func Parse(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	return cfg, nil
}

// Validate checks that the paths required at invocation time are present.
func (c *Config) Validate() error {
	if c.ModelInterface == "" {
		return errors.Join(ErrMissingPath, errors.New("model_interface"))
	}

	if c.DBXMLLib == "" {
		return errors.Join(ErrMissingPath, errors.New("dbxml_lib"))
	}

	return nil
}
