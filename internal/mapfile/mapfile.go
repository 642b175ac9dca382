// Package mapfile reads and writes painted map documents.
package mapfile

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/paintgalaxy/server/internal/galaxy"
)

// Format is the encoding of a map document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported map file extension %q", filepath.Ext(path))
	}
}

// Load reads a painted map from a .yaml, .yml or .json file.
func Load(path string) (*galaxy.Map, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Parse decodes a map document. JSON documents use the painter's camelCase
// keys; YAML documents use snake_case.
func Parse(data []byte, format Format) (*galaxy.Map, error) {
	m := &galaxy.Map{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON map: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML map: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown map format %q", format)
	}
	return m, nil
}

// Marshal renders m as canonical YAML: a comment header followed by the
// document with two-space indentation. Equal maps marshal to equal bytes.
func Marshal(m *galaxy.Map) ([]byte, error) {
	var buf bytes.Buffer

	name := m.Name
	if name == "" {
		name = "Untitled"
	}
	fmt.Fprintf(&buf, "# Painted galaxy - %s\n", strings.ReplaceAll(name, "\n", " "))
	fmt.Fprintf(&buf, "# Stars: %d, hyperlanes: %d, nebulas: %d\n\n", len(m.Stars), len(m.Connections), len(m.Nebulas))

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves m to path as canonical YAML.
func Write(m *galaxy.Map, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}

// Fingerprint identifies a map by the blake2b-256 hash of its canonical
// YAML, so the same painting archived twice shares a fingerprint.
func Fingerprint(m *galaxy.Map) (string, error) {
	data, err := Marshal(m)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
