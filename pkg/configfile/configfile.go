// Package configfile decodes the YAML/JSON registry files used for targets and publishers.
package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	name string
	fn   func([]byte, any) error
}

var (
	yamlDecoder = decoder{name: "yaml", fn: yaml.Unmarshal}
	jsonDecoder = decoder{name: "json", fn: json.Unmarshal}
)

// decodersFor picks decoders by extension; unknown extensions try YAML then JSON.
func decodersFor(path string) []decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return []decoder{yamlDecoder}
	case ".json":
		return []decoder{jsonDecoder}
	default:
		return []decoder{yamlDecoder, jsonDecoder}
	}
}

// Load reads path and decodes it into v. kind names the file in error messages.
func Load(path, kind string, v any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}
	return Decode(raw, path, kind, v)
}

// Decode decodes raw using the format implied by path.
func Decode(raw []byte, path, kind string, v any) error {
	var errs []error
	for _, d := range decodersFor(path) {
		err := d.fn(raw, v)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("decode %s %s: %w", d.name, kind, err))
	}
	return errors.Join(errs...)
}
