package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	responsetransformer "github.com/always-cache/respcache/pkg/response-transformer"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Origin string                    `yaml:"origin"`
	Host   string                    `yaml:"host"`
	Port   int                       `yaml:"port"`
	DB     string                    `yaml:"db"`
	Rules  responsetransformer.Rules `yaml:"rules"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, fmt.Errorf("parse %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks that the config can be used to start the cache.
func (c Config) Validate() error {
	if c.Origin == "" {
		return errors.New("origin not specified")
	}
	u, err := url.Parse(c.Origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid origin %s: need an absolute http(s) URL", c.Origin)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("invalid origin %s: origins with paths are not supported", c.Origin)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// OriginURL returns the parsed origin. The config must be valid.
func (c Config) OriginURL() url.URL {
	u, _ := url.Parse(c.Origin)
	u.Path = ""
	return *u
}
