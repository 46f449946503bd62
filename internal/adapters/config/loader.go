// Package config provides the configuration loader for bake.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFilename is the configuration file read when none is given.
	DefaultFilename = "bake.yaml"

	// DefaultListen is the HTTP address used when the file does not set one.
	DefaultListen = ":8080"

	// DefaultConverterCommand is the converter used when the file does not set one.
	DefaultConverterCommand = "ogr2ogr"

	defaultDatabasePort = 5432
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration at path. A missing file yields the defaults.
func (l *Loader) Load(path string) (*domain.Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Info("config file not found, using defaults", "path", path)
		return Defaults(), nil
	}
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	l.logger.Info("config loaded", "path", path)
	return cfg, nil
}

// Defaults returns the configuration used when no file is present.
func Defaults() *domain.Config {
	return &domain.Config{
		Listen:           DefaultListen,
		TmpDir:           os.TempDir(),
		ConverterCommand: DefaultConverterCommand,
		Database: domain.ConnParams{
			Host: "localhost",
			Port: defaultDatabasePort,
		},
	}
}

// Parse decodes a bake.yaml document. Environment variables referenced as $VAR or
// ${VAR} are expanded before decoding.
func Parse(data []byte) (*domain.Config, error) {
	var file Bakefile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, errors.Join(domain.ErrConfigParseFailed, err)
	}

	cfg := Defaults()
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	if file.TmpDir != "" {
		cfg.TmpDir = file.TmpDir
	}
	if file.Converter.Command != "" {
		cfg.ConverterCommand = file.Converter.Command
	}
	if file.Converter.Timeout != "" {
		timeout, err := time.ParseDuration(file.Converter.Timeout)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "converter.timeout", file.Converter.Timeout)
		}
		if timeout < 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "negative converter timeout"), "converter.timeout", file.Converter.Timeout)
		}
		cfg.ConverterTimeout = timeout
	}

	cfg.Database = domain.ConnParams{
		Host:     file.Database.Host,
		Port:     file.Database.Port,
		User:     file.Database.User,
		Password: file.Database.Password,
		DBName:   file.Database.Name,
	}.Merge(cfg.Database)

	return cfg, nil
}
