package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".mdcvis"
	configFileName = "cli.yaml"
	defaultURL     = "http://127.0.0.1:7790"
)

// ServerConfig is one known kiosk.
type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Config lists the kiosks the console can connect to.
type Config struct {
	DefaultServer string                  `yaml:"default_server"`
	Servers       map[string]ServerConfig `yaml:"servers"`
	configPath    string
}

// getConfigPath gets the configuration file path
func getConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// LoadConfig loads ~/.mdcvis/cli.yaml, creating it with a local entry on first use.
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the console configuration from path. A leading ~ is expanded.
func LoadConfigFrom(path string) (*Config, error) {
	configPath, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	config := &Config{
		configPath: configPath,
		Servers:    make(map[string]ServerConfig),
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		config.DefaultServer = "local"
		config.Servers["local"] = ServerConfig{
			URL:         defaultURL,
			Description: "Kiosk on this machine",
		}
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if config.Servers == nil {
		config.Servers = make(map[string]ServerConfig)
	}
	config.configPath = configPath
	return config, nil
}

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// AddServer adds or replaces a server
func (c *Config) AddServer(name, url, description string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if url == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	c.Servers[name] = ServerConfig{
		URL:         url,
		Description: description,
	}

	// If this is the first server, set it as default
	if c.DefaultServer == "" {
		c.DefaultServer = name
	}

	return c.Save()
}

// RemoveServer removes a server
func (c *Config) RemoveServer(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	delete(c.Servers, name)

	// If the deleted server was the default, pick the first remaining name
	if c.DefaultServer == name {
		c.DefaultServer = ""
		if names := c.Names(); len(names) > 0 {
			c.DefaultServer = names[0]
		}
	}

	return c.Save()
}

// SetDefault sets the default server
func (c *Config) SetDefault(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	c.DefaultServer = name
	return c.Save()
}

// GetServer gets server configuration; an empty name means the default.
func (c *Config) GetServer(name string) (*ServerConfig, error) {
	if name == "" {
		name = c.DefaultServer
	}

	server, exists := c.Servers[name]
	if !exists {
		return nil, fmt.Errorf("server '%s' not found", name)
	}

	return &server, nil
}

// Names returns the server names sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveServer turns the -server flag into a URL. An empty flag selects the
// default entry of cli.yaml; a known name selects that entry; anything else
// is taken as a URL.
func ResolveServer(flagValue string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		if flagValue != "" {
			return flagValue, nil
		}
		return defaultURL, nil
	}
	return cfg.Resolve(flagValue)
}

// Resolve maps a server name or URL to a URL.
func (c *Config) Resolve(nameOrURL string) (string, error) {
	if nameOrURL != "" {
		if s, ok := c.Servers[nameOrURL]; ok {
			return s.URL, nil
		}
		return nameOrURL, nil
	}
	s, err := c.GetServer("")
	if err != nil {
		return "", fmt.Errorf("no default server in %s: %w", c.configPath, err)
	}
	return s.URL, nil
}
