// Package config loads the WideTable daemon configuration from a
// plain key=value file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configFileName = "widetable.conf"
	widetableDir   = ".widetable"
)

type Config struct {
	ServerAddress string
	ServerPort    string

	// DataDir is the root directory for dataset partitions.
	DataDir string
	// Datasets are the declared dataset names; "default" is implied.
	Datasets []string
	// KeyCodec selects the key wire variant: separator or length.
	KeyCodec string
	// ValueCodec selects the value encoding: bytes, string, json or
	// msgpack.
	ValueCodec string

	MaxConnections int
	Debug          bool
}

// DefaultDir returns the WideTable directory in the user's home
// directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, widetableDir), nil
}

func defaults(baseDir string) *Config {
	return &Config{
		ServerAddress: "127.0.0.1",
		ServerPort:    "9645",
		DataDir:       filepath.Join(baseDir, "data"),
		KeyCodec:      "separator",
		ValueCodec:    "string",
	}
}

// Load reads the configuration at path, or from the default location
// when path is empty. A missing file yields the defaults, so a fresh
// install runs without any setup.
func Load(path string) (*Config, error) {
	baseDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = filepath.Join(baseDir, configFileName)
	}

	config := defaults(baseDir)

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "server_address":
			config.ServerAddress = value
		case "server_port":
			config.ServerPort = value
		case "data_dir":
			config.DataDir = value
		case "datasets":
			config.Datasets = splitList(value)
		case "key_codec":
			config.KeyCodec = value
		case "value_codec":
			config.ValueCodec = value
		case "max_connections":
			config.MaxConnections, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid max connections value: %w", err)
			}
		case "debug":
			config.Debug = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
