package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"nickandperla.net/nock/pkg/nock"
)

const (
	defaultConfigFile  = ".nock.yaml"
	defaultHistoryFile = ".nock_history"
)

// Config holds the settings read from the YAML config file. Command-line
// flags override them.
type Config struct {
	DB          string   `yaml:"db"`
	MaxDepth    int      `yaml:"max_depth"`
	MaxSteps    int64    `yaml:"max_steps"`
	Timeout     Duration `yaml:"timeout"`
	PersistMode string   `yaml:"persist_mode"`
	HistoryFile string   `yaml:"history_file"`
	NoStdlib    bool     `yaml:"no_stdlib"`
}

// Duration is a time.Duration written as "250ms" or "2s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(parsed)
	return nil
}

func defaultConfig() Config {
	cfg := Config{
		DB:          "nock.db",
		MaxDepth:    nock.DefaultMaxDepth,
		PersistMode: nock.PersistOnDemand.String(),
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, defaultHistoryFile)
	}
	return cfg
}

// defaultConfigPath returns $HOME/.nock.yaml, or "" without a home
// directory.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultConfigFile)
}

// loadConfig reads path over the defaults. A missing file is only an
// error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// options turns the config into runtime options.
func (c Config) options() ([]nock.Option, error) {
	mode, ok := nock.ParsePersistMode(c.PersistMode)
	if !ok {
		return nil, errors.Errorf("unknown persist mode: %s (use on_demand, always, or never)", c.PersistMode)
	}
	opts := []nock.Option{
		nock.WithMaxDepth(c.MaxDepth),
		nock.WithMaxSteps(c.MaxSteps),
		nock.WithTimeout(time.Duration(c.Timeout)),
		nock.WithPersistMode(mode),
	}
	if c.DB != "" {
		opts = append(opts, nock.WithSQLiteStore(c.DB))
	} else {
		opts = append(opts, nock.WithMemoryStore())
	}
	if c.NoStdlib {
		opts = append(opts, nock.WithNoStdlib())
	}
	return opts, nil
}
