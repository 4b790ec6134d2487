// Package config loads the flat CLI options struct from a TOML file and the
// environment, and watches files for changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/capturehost/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every `env` tag.
const EnvPrefix = "CAPTUREHOST_"

// LoadConfig fills opts (a pointer to a struct) with precedence CLI > env >
// TOML file. The file path is read from the struct's Config field; a missing
// file is not an error. Fields whose flag was set on cmd are left alone.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: expected pointer to struct, got %T", opts)
	}
	v = v.Elem()

	changed := changedFlags(cmd)

	if path := v.FieldByName("Config"); path.IsValid() && path.Kind() == reflect.String && path.String() != "" {
		tree, err := readTOML(path.String())
		if err != nil {
			return err
		}
		if tree != nil {
			applyTOML(v, tree, changed)
		}
	}

	applyEnv(v, changed)
	return nil
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	})
	return changed
}

// readTOML returns nil, nil when the file does not exist.
func readTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return tree, nil
}

func applyTOML(v reflect.Value, tree map[string]any, changed map[string]bool) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if changed[fieldNameToFlag(sf.Name)] {
			continue
		}
		tomlPath := sf.Tag.Get("toml")
		if tomlPath == "" || tomlPath == "-" {
			continue
		}
		if value := getNestedValue(tree, tomlPath); value != nil {
			setFieldValue(v.Field(i), value)
		}
	}
}

func applyEnv(v reflect.Value, changed map[string]bool) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if changed[fieldNameToFlag(sf.Name)] {
			continue
		}
		envKey := sf.Tag.Get("env")
		if envKey == "" {
			continue
		}
		if envValue, ok := os.LookupEnv(EnvPrefix + envKey); ok && envValue != "" {
			setFieldValueFromString(v.Field(i), envValue)
		}
	}
}

// fieldNameToFlag converts a struct field name to the flag humacli derives
// from it: "LoggingLevel" -> "logging-level".
func fieldNameToFlag(fieldName string) string {
	var b strings.Builder
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// getNestedValue resolves a dotted path such as "capture.backends".
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current[parts[len(parts)-1]]
}

func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		switch arr := value.(type) {
		case []any:
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			field.Set(reflect.ValueOf(out))
		case string:
			field.Set(reflect.ValueOf(splitList(arr)))
		}
	}
}

// setFieldValueFromString converts an environment value. Lists are
// comma-separated.
func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(splitList(value)))
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ReadLoggingConfig reads the [logging] table of a config file. Keys other
// than level and format are per-module levels.
func ReadLoggingConfig(path string) (logging.Config, error) {
	cfg := logging.Config{Level: "info", Format: "text", Modules: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw struct {
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse logging config: %w", err)
	}

	for key, value := range raw.Logging {
		s, ok := value.(string)
		if !ok {
			continue
		}
		switch key {
		case "level":
			cfg.Level = s
		case "format":
			cfg.Format = s
		default:
			cfg.Modules[key] = s
		}
	}
	return cfg, nil
}

// LoadLoggingConfig is ReadLoggingConfig falling back to defaults on any error.
func LoadLoggingConfig(path string) logging.Config {
	cfg, err := ReadLoggingConfig(path)
	if err != nil {
		return logging.Config{Level: "info", Format: "text", Modules: make(map[string]string)}
	}
	return cfg
}
