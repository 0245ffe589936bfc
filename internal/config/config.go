// Package config manages YAML-based configuration and CLI flags of the asset server.
package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CageChen/anydir"
)

// Layer is one directory of the served overlay
type Layer struct {
	Kind anydir.Kind `yaml:"kind" json:"kind"`
	Path string      `yaml:"path" json:"path"`
}

// Config holds all configuration options of the asset server
type Config struct {
	// Runtime directory placed above all layers, typically the on-disk
	// source of an embedded layer.
	Overlay string `yaml:"overlay,omitempty"`

	// Layers, topmost first.
	Layers []Layer `yaml:"layers"`

	Port               int      `yaml:"port"`
	Index              string   `yaml:"index"`
	MarkdownExtensions []string `yaml:"markdown_extensions"`
	Minify             bool     `yaml:"minify"`
	Gzip               bool     `yaml:"gzip"`

	// Internal: path to config file for saving
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Layers:             []Layer{{Kind: anydir.KindCt, Path: "web"}},
		Port:               8080,
		Index:              "index.html",
		MarkdownExtensions: []string{".md", ".markdown"},
		Minify:             false,
		Gzip:               true,
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/anydir"
	}
	return filepath.Join(home, ".config", "anydir")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from file and command line arguments
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	overlay := flags.String("overlay", "", "Runtime directory served above the embedded assets")
	port := flags.Int("port", 0, "HTTP server port")
	minify := flags.Bool("minify", false, "Minify text assets")
	gzip := flags.Bool("gzip", true, "Compress responses")
	configFile := flags.String("config", "", "Configuration file path")

	flags.StringVar(overlay, "o", "", "Runtime overlay directory (shorthand)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// Determine config file path
	var cfgPath string
	if *configFile != "" {
		cfgPath = *configFile
	} else {
		// Try ~/.config/anydir/config.yaml first
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("anydir.yaml"); err == nil {
			cfgPath = "anydir.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil && *configFile != "" {
			// Only return error if user explicitly specified config file
			return nil, err
		}
		cfg.configPath = cfgPath
	} else {
		cfg.configPath = GetConfigPath()
	}

	// Command line flags override config file (only if explicitly set)
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "overlay", "o":
			cfg.Overlay = *overlay
		case "port":
			cfg.Port = *port
		case "minify":
			cfg.Minify = *minify
		case "gzip":
			cfg.Gzip = *gzip
		}
	})

	cfg.resolvePaths()

	return cfg, nil
}

// resolvePaths makes runtime paths absolute so entries report absolute paths.
// Embedded paths are registry keys and stay as written.
func (c *Config) resolvePaths() {
	if c.Overlay != "" {
		if absPath, err := filepath.Abs(c.Overlay); err == nil {
			c.Overlay = absPath
		}
	}

	for i := range c.Layers {
		if c.Layers[i].Kind != anydir.KindRt {
			continue
		}
		if absPath, err := filepath.Abs(c.Layers[i].Path); err == nil {
			c.Layers[i].Path = absPath
		}
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	return errors.Wrapf(yaml.Unmarshal(data, c), "parse config %s", path)
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	// Ensure config directory exists
	configDir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	return errors.Wrap(os.WriteFile(c.configPath, data, 0644), "write config")
}

// AddLayer appends a layer below the existing ones unless it is already present
func (c *Config) AddLayer(kind anydir.Kind, path string) error {
	if _, err := kind.MarshalText(); err != nil {
		return err
	}

	if kind == anydir.KindRt {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrap(err, "resolve layer path")
		}
		path = absPath
	}

	for _, l := range c.Layers {
		if l.Kind == kind && l.Path == path {
			return nil // Already exists
		}
	}

	c.Layers = append(c.Layers, Layer{Kind: kind, Path: path})

	return nil
}

// RemoveLayerByIndex removes a layer by its index
func (c *Config) RemoveLayerByIndex(index int) {
	if index < 0 || index >= len(c.Layers) {
		return
	}
	c.Layers = append(c.Layers[:index], c.Layers[index+1:]...)
}

// Dirs returns the directories to serve, topmost first: the overlay, if set,
// followed by all layers.
func (c *Config) Dirs() ([]anydir.AnyDir, error) {
	var dirs []anydir.AnyDir

	if c.Overlay != "" {
		dirs = append(dirs, anydir.Rt(c.Overlay))
	}

	for _, l := range c.Layers {
		d, err := anydir.New(l.Kind, l.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %s:%s", l.Kind, l.Path)
		}
		dirs = append(dirs, d)
	}

	return dirs, nil
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// IsMarkdownFile checks if a file has a markdown extension
func (c *Config) IsMarkdownFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.MarkdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
