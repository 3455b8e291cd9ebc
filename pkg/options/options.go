// Package options reads and writes the user's persisted CLI options, ~/.cdk/options.yaml.
package options

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klothoplatform/cdk-notices/pkg/cli_config"
	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/klothoplatform/cdk-notices/pkg/set"
	"github.com/klothoplatform/cdk-notices/pkg/yaml_util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "options.yaml"

	acknowledgedPath = "notices.acknowledged"
)

type (
	Options struct {
		Notices NoticesOptions `yaml:"notices,omitempty"`
	}

	NoticesOptions struct {
		// URL overrides the notices feed.
		URL          string `yaml:"url,omitempty"`
		Disabled     bool   `yaml:"disabled,omitempty"`
		Acknowledged []int  `yaml:"acknowledged,omitempty"`
	}

	// Store is an options file on disk.
	Store struct {
		Path string
	}
)

func DefaultStore() (Store, error) {
	path, err := cli_config.CdkConfigPath(FileName)
	if err != nil {
		return Store{}, errors.Wrap(err, "couldn't find CLI options file path")
	}
	return Store{Path: path}, nil
}

// Read returns the stored options. A missing file gives the defaults.
func (s Store) Read() (Options, error) {
	var options Options
	content, err := s.readBytes()
	if err != nil {
		return options, err
	}
	if err := yaml.Unmarshal(content, &options); err != nil {
		return options, errors.Wrapf(err, "invalid CLI options file %s", s.Path)
	}
	return options, nil
}

// Set upserts each dotted-path option, e.g. `notices.disabled=true`.
func (s Store) Set(ctx context.Context, options map[string]string) error {
	if len(options) == 0 {
		// This isn't just an optimization. If the existing file is invalid, then we don't want an error message coming
		// from this path (since the user hasn't specified options to write, and would be confused by a message saying
		// "couldn't write CLI options" or similar)
		return nil
	}
	content, err := s.readBytes()
	if err != nil {
		return err
	}
	content, err = setOptions(ctx, content, options)
	if err != nil {
		return err
	}
	return s.write(content)
}

// Acknowledge records an issue number so its notice is no longer shown. Acknowledging twice is a no-op.
func (s Store) Acknowledge(issueNumber int) error {
	content, err := s.readBytes()
	if err != nil {
		return err
	}
	if err := yaml_util.CheckValid[Options](content, yaml_util.Lenient); err != nil {
		return errors.Wrap(err, "existing options file is invalid")
	}
	content, err = yaml_util.AppendToSequence(content, acknowledgedPath, strconv.Itoa(issueNumber))
	if err != nil {
		return errors.Wrapf(err, "couldn't acknowledge %d", issueNumber)
	}
	return s.write(content)
}

// AcknowledgedIssues returns the acknowledged issue numbers in ascending order.
func (o Options) AcknowledgedIssues() []int {
	return set.Sorted(set.SetOf(o.Notices.Acknowledged...))
}

// setOptions inserts the given options into the yaml, validating along the way that the options still form a valid
// Options.
func setOptions(ctx context.Context, optionsYaml []byte, options map[string]string) ([]byte, error) {
	logger := logging.GetLogger(ctx).Sugar()
	// First, a warning if the original file isn't valid
	if err := yaml_util.CheckValid[Options](optionsYaml, yaml_util.Lenient); err != nil {
		return nil, errors.Wrap(err, "existing options file is invalid")
	} else if warns := yaml_util.CheckValid[Options](optionsYaml, yaml_util.Strict); warns != nil {
		logger.Warn(`Existing options contain extra parameters:`)
		for _, e := range yaml_util.YamlErrors(warns) {
			logger.Warnf(`▸ %s`, e)
		}
	}

	// Validate each option entry in two passes: a lenient check that errors out, then a strict check that only
	// warns. That way you won't get warnings and then an error.
	var warns []string
	for k, v := range options {
		yamlFragment, err := yaml_util.SetValue(nil, k, v)
		if err != nil {
			return nil, err
		}
		if err = yaml_util.CheckValid[Options](yamlFragment, yaml_util.Lenient); err != nil {
			return nil, errors.Wrapf(err, `invalid option: %s`, k)
		}
		if warn := yaml_util.CheckValid[Options](yamlFragment, yaml_util.Strict); warn != nil {
			warns = append(warns, fmt.Sprintf(`Unrecognized option "%s". We'll still set it, but it may not have any effect.`, k))
		}
	}
	for _, msg := range warns {
		logger.Warn(msg)
	}

	for k, v := range options {
		modified, err := yaml_util.SetValue(optionsYaml, k, v)
		if err != nil {
			return nil, errors.Wrapf(err, `invalid option: %s`, k)
		}
		optionsYaml = modified
	}
	if err := yaml_util.CheckValid[Options](optionsYaml, yaml_util.Lenient); err != nil {
		return nil, errors.Wrapf(err, `couldn't write options (unknown error)`)
	}
	return optionsYaml, nil
}

func (s Store) readBytes() ([]byte, error) {
	content, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil // If the file isn't there, silently return the defaults
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't read CLI options file")
	}
	return content, nil
}

func (s Store) write(content []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return errors.Wrap(err, "couldn't create CLI options directory")
	}
	if err := os.WriteFile(s.Path, content, 0600); err != nil {
		return errors.Wrap(err, "couldn't write CLI options file")
	}
	return nil
}
