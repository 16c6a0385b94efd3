// Package settings is the concrete form of the settings facade (§6):
// a small struct of knobs consulted throughout decoding and the
// dataflow passes, loadable from YAML or built programmatically with
// functional options.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the decompiler core's external configuration.
type Settings struct {
	// SSLFileName points at the instruction-set/signature library the
	// decoder consults for lifting semantics.
	SSLFileName string `yaml:"sslFileName"`
	// WorkingDirectory is resolved relative paths' base.
	WorkingDirectory string `yaml:"workingDirectory"`
	// DataDirectory holds auxiliary data files (proven-callee tables,
	// signature fragments) the program driver loads at startup.
	DataDirectory string `yaml:"dataDirectory"`
	// DebugDecoder turns on verbose per-instruction decode tracing.
	DebugDecoder bool `yaml:"debugDecoder"`
	// AssumeABI, when true, assumes calls preserve callee-saved
	// registers: a call's definitions are its declared Defines rather
	// than its conservative ABIDefines (see stmt.GetDefinitions). It
	// does not change the rule that a childless call defines every
	// renameable variable during phi placement.
	AssumeABI bool `yaml:"assumeABI"`
}

// Option configures a Settings value built with New.
type Option func(*Settings)

// New builds a Settings from the given options, defaulting AssumeABI
// to true (the common case for analyzed binaries with a known ABI).
func New(opts ...Option) *Settings {
	s := &Settings{AssumeABI: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSSLFileName sets SSLFileName.
func WithSSLFileName(path string) Option {
	return func(s *Settings) { s.SSLFileName = path }
}

// WithWorkingDirectory sets WorkingDirectory.
func WithWorkingDirectory(dir string) Option {
	return func(s *Settings) { s.WorkingDirectory = dir }
}

// WithDataDirectory sets DataDirectory.
func WithDataDirectory(dir string) Option {
	return func(s *Settings) { s.DataDirectory = dir }
}

// WithDebugDecoder toggles DebugDecoder.
func WithDebugDecoder(on bool) Option {
	return func(s *Settings) { s.DebugDecoder = on }
}

// WithAssumeABI toggles AssumeABI.
func WithAssumeABI(on bool) Option {
	return func(s *Settings) { s.AssumeABI = on }
}

// Load reads a YAML settings file from path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	s := &Settings{AssumeABI: true}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path as YAML.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}
