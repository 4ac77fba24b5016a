package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML. Pointers tell absent keys apart from
// zero values. List settings accept a YAML sequence or a comma string.
type fileConfig struct {
	Output      *string    `yaml:"output"`
	Exts        *stringSet `yaml:"exts"`
	Names       *stringSet `yaml:"names"`
	MaxSize     *int64     `yaml:"max_size"`
	Ignore      *stringSet `yaml:"ignore"`
	RuleFiles   *stringSet `yaml:"rule_files"`
	Dedupe      *bool      `yaml:"dedupe"`
	TreeDepth   *int       `yaml:"tree_depth"`
	TreeEngine  *string    `yaml:"tree_engine"`
	NoTree      *bool      `yaml:"no_tree"`
	Concurrent  *bool      `yaml:"concurrent"`
	Workers     *int       `yaml:"workers"`
	Progress    *bool      `yaml:"progress"`
	Timeout     *string    `yaml:"timeout"`
	Format      *string    `yaml:"format"`
	ShowSkipped *bool      `yaml:"show_skipped"`
	Verbose     *bool      `yaml:"verbose"`
	Quiet       *bool      `yaml:"quiet"`
	LogLevel    *string    `yaml:"log_level"`
	NoColor     *bool      `yaml:"no_color"`
}

// stringSet is a comma-joined list.
type stringSet string

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (s *stringSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = stringSet(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*s = stringSet(strings.Join(items, ","))
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// LoadFile overlays the YAML file at path. Keys whose flag was set on the
// command line are left alone.
func (c *Config) LoadFile(path string, fs *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.apply(bytes.NewReader(data), fs); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func (c *Config) apply(r io.Reader, fs *pflag.FlagSet) error {
	var fc fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	setString(&c.OutputFile, fc.Output, changed("output"))
	setList(&c.Extensions, fc.Exts, changed("exts"))
	setList(&c.Names, fc.Names, changed("names"))
	setValue(&c.MaxFileSize, fc.MaxSize, changed("max-size"))
	setList(&c.CustomIgnore, fc.Ignore, changed("ignore"))
	setList(&c.RuleFiles, fc.RuleFiles, changed("rule-files"))
	setValue(&c.Dedupe, fc.Dedupe, changed("dedupe"))
	setValue(&c.TreeDepth, fc.TreeDepth, changed("tree-depth"))
	setString(&c.TreeEngine, fc.TreeEngine, changed("tree-engine"))
	setValue(&c.NoTree, fc.NoTree, changed("no-tree"))
	setValue(&c.Concurrent, fc.Concurrent, changed("concurrent"))
	setValue(&c.MaxWorkers, fc.Workers, changed("workers"))
	setValue(&c.ShowProgress, fc.Progress, changed("progress"))
	setString(&c.Format, fc.Format, changed("format"))
	setValue(&c.ShowSkipped, fc.ShowSkipped, changed("show-skipped"))
	setValue(&c.Verbose, fc.Verbose, changed("verbose"))
	setValue(&c.Quiet, fc.Quiet, changed("quiet"))
	setString(&c.LogLevel, fc.LogLevel, changed("log-level"))
	setValue(&c.NoColor, fc.NoColor, changed("no-color"))

	if fc.Timeout != nil && !changed("timeout") {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

func setValue[T any](dst *T, v *T, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

func setString(dst *string, v *string, flagSet bool) {
	setValue(dst, v, flagSet)
}

func setList(dst *string, v *stringSet, flagSet bool) {
	if v != nil && !flagSet {
		*dst = string(*v)
	}
}
