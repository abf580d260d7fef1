// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config handles treasury configuration loading, saving, and
// validation. The configuration file is a plain key=value format with
// # comments; unknown keys are ignored so older binaries can read newer
// files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for the distribution cadence and threshold.
const (
	// DefaultQuarterDays is the distribution cadence in days.
	DefaultQuarterDays = 90

	// DefaultMinPool is the distribution threshold in satoshis (30 coins).
	DefaultMinPool = 30 * 100_000_000
)

// Config holds the treasury configuration.
type Config struct {
	DataDir    string // base directory for the state store and wallet seed
	ListenAddr string // listen address for the oracle callback handler
	Network    string // "mainnet", "testnet", or "regtest"
	LogLevel   string // "debug", "info", "warn", or "error"
	LogFile    string // log file path, empty for stderr

	RPCURL  string // BSV node JSON-RPC endpoint
	RPCUser string // JSON-RPC username
	RPCPass string // JSON-RPC password

	Operating    string   // operating-cost recipient address
	Controller   string   // controlling identity, empty means the operating address
	Community    []string // community recipients (addresses or paymail handles)
	Stakeholders []string // initial stakeholder recipients

	MinPool     uint64 // distribution threshold in satoshis
	QuarterDays int    // distribution cadence in days

	OracleURL string // AI oracle endpoint, empty disables the oracle client
	Resolver  string // DNS resolver for paymail SRV discovery, empty uses the system default
	DNSSEC    bool   // require DNSSEC-validated paymail discovery
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		ListenAddr:  ":8080",
		Network:     "mainnet",
		LogLevel:    "info",
		RPCURL:      "http://localhost:8332",
		MinPool:     DefaultMinPool,
		QuarterDays: DefaultQuarterDays,
	}
}

// DefaultDataDir returns the default data directory,
// $HOME/.bitfstreasury, falling back to a relative path when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bitfstreasury"
	}
	return filepath.Join(home, ".bitfstreasury")
}

// ConfigPath returns the path of the configuration file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// Quarter returns the configured distribution cadence as a duration.
func (c Config) Quarter() time.Duration {
	return time.Duration(c.QuarterDays) * 24 * time.Hour
}

// LoadConfig reads a configuration file and returns the parsed Config.
// Missing keys keep their defaults; unknown keys are ignored.
// It returns ErrConfigNotFound if the file does not exist and
// ErrInvalidConfigLine for lines that do not parse.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNum, line)
		}

		if err := applyKey(&cfg, key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	return cfg, nil
}

// parseKeyValue splits a "key = value" line on the first '=' only, so
// values may themselves contain '='.
func parseKeyValue(line string) (key, value string, err error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", fmt.Errorf("missing '='")
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", fmt.Errorf("empty key")
	}
	return key, value, nil
}

// applyKey sets a single configuration field from its file key.
// Unknown keys are ignored for forward compatibility.
func applyKey(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "listen":
		cfg.ListenAddr = value
	case "network":
		cfg.Network = value
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	case "rpcurl":
		cfg.RPCURL = value
	case "rpcuser":
		cfg.RPCUser = value
	case "rpcpass":
		cfg.RPCPass = value
	case "operating":
		cfg.Operating = value
	case "controller":
		cfg.Controller = value
	case "community":
		cfg.Community = splitList(value)
	case "stakeholders":
		cfg.Stakeholders = splitList(value)
	case "minpool":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("minpool: %w", err)
		}
		cfg.MinPool = v
	case "quarterdays":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("quarterdays: %w", err)
		}
		cfg.QuarterDays = v
	case "oracleurl":
		cfg.OracleURL = value
	case "resolver":
		cfg.Resolver = value
	case "dnssec":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("dnssec: %w", err)
		}
		cfg.DNSSEC = v
	}
	return nil
}

// splitList parses a comma-separated value into its non-empty elements.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// joinList renders a list as a comma-separated value.
func joinList(values []string) string {
	return strings.Join(values, ",")
}

// SaveConfig writes the configuration to path in key=value format,
// creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# BitFS Treasury Configuration\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "listen = %s\n", cfg.ListenAddr)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Node connection\n")
	fmt.Fprintf(&b, "rpcurl = %s\n", cfg.RPCURL)
	fmt.Fprintf(&b, "rpcuser = %s\n", cfg.RPCUser)
	fmt.Fprintf(&b, "rpcpass = %s\n", cfg.RPCPass)
	b.WriteString("\n# Recipients\n")
	fmt.Fprintf(&b, "operating = %s\n", cfg.Operating)
	fmt.Fprintf(&b, "controller = %s\n", cfg.Controller)
	fmt.Fprintf(&b, "community = %s\n", joinList(cfg.Community))
	fmt.Fprintf(&b, "stakeholders = %s\n", joinList(cfg.Stakeholders))
	b.WriteString("\n# Distribution\n")
	fmt.Fprintf(&b, "minpool = %d\n", cfg.MinPool)
	fmt.Fprintf(&b, "quarterdays = %d\n", cfg.QuarterDays)
	b.WriteString("\n# Services\n")
	fmt.Fprintf(&b, "oracleurl = %s\n", cfg.OracleURL)
	fmt.Fprintf(&b, "resolver = %s\n", cfg.Resolver)
	fmt.Fprintf(&b, "dnssec = %t\n", cfg.DNSSEC)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
