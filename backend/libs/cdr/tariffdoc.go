package cdr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Tariff document formats understood by DecodeTariff.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// DecodeTariff parses a tariff document and validates it.
func DecodeTariff(data []byte, format string) (Tariff, error) {
	var t Tariff
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&t); err != nil {
			return Tariff{}, fmt.Errorf("cdr: decode json tariff: %w", err)
		}
	case FormatYAML, "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return Tariff{}, fmt.Errorf("cdr: decode yaml tariff: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &t)
		if err != nil {
			return Tariff{}, fmt.Errorf("cdr: decode toml tariff: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Tariff{}, fmt.Errorf("cdr: decode toml tariff: unknown key %s", undecoded[0])
		}
	default:
		return Tariff{}, fmt.Errorf("cdr: unsupported tariff format %q", format)
	}

	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}

// LoadTariffFile reads a tariff document, picking the format from the file extension.
func LoadTariffFile(path string) (Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tariff{}, fmt.Errorf("cdr: read tariff: %w", err)
	}
	return DecodeTariff(data, filepath.Ext(path))
}
