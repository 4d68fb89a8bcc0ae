package config

import (
	"errors"
	"fmt"
	"github.com/tennlab/ucaspian/link/packet"
	"github.com/tennlab/ucaspian/link/session"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"time"
)

// Config holds the ucctl configuration.
type Config struct {
	// Port is the tty of a local serial adapter, already set to raw mode at
	// the device's baud rate.
	Port string `yaml:"port"`
	// TCP, if set, is the host:port of a serial bridge and takes precedence over Port.
	TCP     string        `yaml:"tcp"`
	Timeout time.Duration `yaml:"timeout"`
	Framing string        `yaml:"framing"`
	// Capture, if set, is a CSV file that records every session.
	Capture string `yaml:"capture"`
}

func Default() *Config {
	return &Config{
		Port:    "/dev/ttyUSB0",
		Timeout: 500 * time.Millisecond,
		Framing: "v2",
	}
}

// DefaultPath returns the default config file path: ~/.ucaspian/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ucaspian", "config.yaml")
	}
	return filepath.Join(home, ".ucaspian", "config.yaml")
}

// Load reads the configuration from the given YAML file path. If the file
// does not exist, it returns the default Config with no error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, not %v", c.Timeout)
	}
	if _, err := packet.ParseFraming(c.Framing); err != nil {
		return err
	}
	if c.Port == "" && c.TCP == "" {
		return errors.New("one of port or tcp must be set")
	}
	return nil
}

func (c *Config) ParsedFraming() (packet.Framing, error) {
	return packet.ParseFraming(c.Framing)
}

// Opener returns an opener for the configured link.
func (c *Config) Opener() session.Opener {
	if c.TCP != "" {
		return session.DialBridge(c.TCP, c.Timeout)
	}
	return session.OpenDevice(c.Port)
}
