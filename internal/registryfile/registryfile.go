// Package registryfile decodes the YAML/JSON registry files the watcher reads
// (watch targets, publisher sinks).
package registryfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads path and decodes it into out. name labels errors ("watches",
// "publishers").
func Load(path, name string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", name)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", name, err)
	}
	return Decode(raw, filepath.Ext(path), name, out)
}

// Decode picks the decoder from ext. Without a known extension YAML is tried
// first, then JSON. Unknown fields are rejected.
func Decode(data []byte, ext, name string, out any) error {
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml":
		return wrap(name, "yaml", decodeYAML(data, out))
	case ".json":
		return wrap(name, "json", decodeJSON(data, out))
	}

	yamlErr := decodeYAML(data, out)
	if yamlErr == nil {
		return nil
	}
	if jsonErr := decodeJSON(data, out); jsonErr == nil {
		return nil
	}
	return fmt.Errorf("%s file format not recognized (expected YAML or JSON): %w", name, yamlErr)
}

func decodeYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func wrap(name, format string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("decode %s %s: %w", format, name, err)
}
