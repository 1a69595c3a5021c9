package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPathEnv = "CONFIG_FILE"

var (
	errNilTarget   = errors.New("config: target is nil")
	errTargetKind  = errors.New("config: target must be pointer to struct")
	errUnsupported = errors.New("config: unsupported field type")
	durationType   = reflect.TypeOf(time.Duration(0))
)

var scalarParsers = map[reflect.Kind]func(reflect.Value, string) error{
	reflect.String: func(field reflect.Value, raw string) error {
		field.SetString(raw)
		return nil
	},
	reflect.Bool: func(field reflect.Value, raw string) error {
		b, err := strconv.ParseBool(raw)
		if err == nil {
			field.SetBool(b)
		}
		return err
	},
}

func init() {
	parseInt := func(field reflect.Value, raw string) error {
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err == nil {
			field.SetInt(n)
		}
		return err
	}
	parseUint := func(field reflect.Value, raw string) error {
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err == nil {
			field.SetUint(n)
		}
		return err
	}
	parseFloat := func(field reflect.Value, raw string) error {
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err == nil {
			field.SetFloat(f)
		}
		return err
	}

	for _, k := range []reflect.Kind{reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64} {
		scalarParsers[k] = parseInt
	}
	for _, k := range []reflect.Kind{reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64} {
		scalarParsers[k] = parseUint
	}
	scalarParsers[reflect.Float32] = parseFloat
	scalarParsers[reflect.Float64] = parseFloat
}

// LoadConfig fills target from the YAML file named by CONFIG_FILE, if any,
// and then from environment variables.
func LoadConfig(target interface{}) error {
	return LoadConfigFrom(os.Getenv(defaultConfigPathEnv), target)
}

// LoadConfigFrom is LoadConfig with an explicit file path; an empty path skips
// the file. Each field reads PARENT_CHILD from the environment unless an
// `env:"KEY"` tag names the variable or `env:"-"` opts it out. Slices take
// comma separated values.
func LoadConfigFrom(path string, target interface{}) error {
	if target == nil {
		return errNilTarget
	}
	root := reflect.ValueOf(target)
	if root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return errTargetKind
	}

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("config: decode yaml %s: %w", path, err)
		}
	}

	return overlayEnv(root.Elem(), "")
}

func overlayEnv(v reflect.Value, prefix string) error {
	for i := 0; i < v.NumField(); i++ {
		field, meta := v.Field(i), v.Type().Field(i)
		if !field.CanSet() {
			continue
		}
		if meta.Anonymous {
			if err := overlayEnv(field, prefix); err != nil {
				return err
			}
			continue
		}

		key, skip := envKey(prefix, meta)
		if skip {
			continue
		}
		if field.Kind() == reflect.Struct {
			if err := overlayEnv(field, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setField(field, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

func envKey(prefix string, meta reflect.StructField) (string, bool) {
	tag := meta.Tag.Get("env")
	switch tag {
	case "-":
		return "", true
	case "":
		return joinKey(prefix, meta.Name), false
	}
	return joinKey("", tag), false
}

func joinKey(prefix, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := parseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	if field.Kind() == reflect.Slice {
		parts := splitList(raw)
		out := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setField(out.Index(i), part); err != nil {
				return err
			}
		}
		field.Set(out)
		return nil
	}

	parse, ok := scalarParsers[field.Kind()]
	if !ok {
		return fmt.Errorf("%w %s", errUnsupported, field.Type())
	}
	return parse(field, raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts Go duration strings and bare integers as seconds.
func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(value)
}
