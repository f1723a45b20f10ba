package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyFile reads a TOML file whose top-level keys are environment variable
// names in any case, e.g.
//
//	data_source = "https://example.org/samples.csv"
//	fetch_attempts = 5
//	kafka_brokers = ["k1:9092", "k2:9092"]
//
// and exports each key that is not already set in the environment, so the
// file acts as a layer of defaults beneath the environment.
func ApplyFile(path string) error {
	var values map[string]any
	if _, err := toml.DecodeFile(path, &values); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	for k, v := range values {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		s, err := tomlValueString(v)
		if err != nil {
			return fmt.Errorf("config file key %s: %w", k, err)
		}
		if err := os.Setenv(key, s); err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
	}
	return nil
}

func tomlValueString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64, float64, bool:
		return fmt.Sprint(val), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := tomlValueString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
