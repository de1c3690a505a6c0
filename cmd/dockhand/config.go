// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dockhand-project/dockhand/engine"
	"github.com/dockhand-project/dockhand/transport"
)

// fileConfig is the YAML configuration file shape. All fields are
// optional; flags and environment variables override it.
type fileConfig struct {
	// Host is the daemon URI (unix:///path, tcp://host:port,
	// https://host:port).
	Host string `yaml:"host"`
	// CertDir is the client certificate directory for an https host.
	CertDir string `yaml:"cert_dir"`
	// TLSVerify enables daemon certificate verification against
	// ca.pem in CertDir.
	TLSVerify bool `yaml:"tls_verify"`
}

// defaultConfigPath is where the config file lives unless --config
// points elsewhere. A missing file is not an error.
func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "dockhand", "config.yaml")
}

func loadFileConfig(path string, required bool) (fileConfig, error) {
	var config fileConfig
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

// clientOptions carries the daemon connection flags shared by every
// subcommand.
type clientOptions struct {
	configPath string
	host       string
	certDir    string
	tlsVerify  bool
}

// bind registers the connection flags on flagSet.
func (o *clientOptions) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	flagSet.StringVar(&o.host, "host", "", "daemon URI (overrides config and DOCKER_HOST)")
	flagSet.StringVar(&o.certDir, "cert-dir", "", "client certificate directory for https hosts")
	flagSet.BoolVar(&o.tlsVerify, "tls-verify", false, "verify the daemon certificate against ca.pem")
}

// newClient resolves the connection configuration and creates an
// engine client. Precedence: flags, then environment (DOCKER_HOST
// family), then the config file, then the default Unix socket.
func (o *clientOptions) newClient(logger *slog.Logger) (*engine.Client, error) {
	configPath := o.configPath
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath()
	}
	file, err := loadFileConfig(configPath, explicit)
	if err != nil {
		return nil, err
	}

	config := engine.Config{Logger: logger}

	switch {
	case o.host != "":
		config.Host = o.host
	case os.Getenv("DOCKER_HOST") != "":
		config.Host = os.Getenv("DOCKER_HOST")
	default:
		config.Host = file.Host
	}

	certDir := o.certDir
	tlsVerify := o.tlsVerify
	if certDir == "" {
		if envDir := os.Getenv("DOCKER_CERT_PATH"); envDir != "" {
			certDir = envDir
			tlsVerify = os.Getenv("DOCKER_TLS_VERIFY") != ""
		} else if file.CertDir != "" {
			certDir = file.CertDir
			tlsVerify = file.TLSVerify
		}
	}
	if certDir != "" {
		config.TLS = &transport.TLSOptions{CertDir: certDir, VerifyPeer: tlsVerify}
	}

	return engine.NewClient(config)
}
