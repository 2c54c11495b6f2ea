package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/notorious-go/treewalk/walk"
)

// Names are the file names Load looks for, in order.
var Names = []string{".treewalk.yml", ".treewalk.yaml"}

// File holds the settings of a .treewalk.yml file. Command-line flags override
// every setting.
type File struct {
	Order    string `yaml:"order,omitempty" validate:"omitempty,oneof=sorted arrival"`
	Workers  int    `yaml:"workers,omitempty" validate:"gte=0"`
	MaxDepth int    `yaml:"maxDepth,omitempty" validate:"gte=0"`
	Hidden   bool   `yaml:"hidden,omitempty"`
	Format   string `yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load attempts to read one of Names from the given directory. Returns a
// zero-value config (not an error) if no config file exists.
func Load(dir string) (*File, error) {
	for _, name := range Names {
		cfg, err := LoadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return &File{}, nil
}

// LoadFile reads the config file at path. Unlike Load, a missing file is an
// error. Unknown keys are rejected so that typos do not go unnoticed.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		// io.EOF means the file is empty, which is a valid, empty config.
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (f *File) Validate() error {
	return validate.Struct(f)
}

// WalkConfig returns the walk settings of f.
func (f *File) WalkConfig() walk.Config {
	return walk.Config{
		Order:    walk.Order(f.Order),
		Workers:  f.Workers,
		MaxDepth: f.MaxDepth,
		Hidden:   f.Hidden,
	}
}
