package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvFileVariable names the variable that pins a single .env file.
const EnvFileVariable = "SHOWCASE_ENV_FILE"

// Load builds a Config from DefaultConfig, the optional YAML file at path and
// SHOWCASE_* environment overrides, in that order. .env files are loaded
// before overrides are applied: the file named by SHOWCASE_ENV_FILE when set,
// otherwise .env.local then .env. Missing files are ignored.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("showcase config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("showcase config: parse %s: %w", path, err)
		}
	}

	ApplyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

func loadEnvFiles() error {
	if file := os.Getenv(EnvFileVariable); file != "" {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("showcase config: load env file %s: %w", file, err)
		}
		return nil
	}
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("showcase config: load %s: %w", file, err)
		}
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields tagged with `env:"NAME"` using lookup. Slices are
// comma separated and durations use time.ParseDuration syntax. Unparseable
// values are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if cfg == nil || lookup == nil {
		return
	}
	applyEnvToStruct(reflect.ValueOf(cfg).Elem(), lookup)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyEnvToStruct(v reflect.Value, lookup LookupFunc) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field, lookup)
			continue
		}
		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := lookup(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		setField(field, strings.TrimSpace(raw))
	}
}

func setField(field reflect.Value, raw string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		if parsed, err := strconv.ParseBool(raw); err == nil {
			field.SetBool(parsed)
		}
	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			if d, err := time.ParseDuration(raw); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			field.SetInt(parsed)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		field.Set(reflect.ValueOf(out))
	}
}
