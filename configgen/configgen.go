// Package configgen writes the artifacts of an extraction run: the JSON
// configuration, an optional C++ header, an HTML report and a workbook.
package configgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/stairreg/regulation"
)

const (
	jsonExt   = ".json"
	configTag = "_config"
)

// DefaultOutputPath returns <dir>/<pdf stem>_config.json.
func DefaultOutputPath(dir, pdfPath string) string {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+configTag+jsonExt)
}

// SiblingPath swaps a trailing .json for ext, or appends ext otherwise.
func SiblingPath(jsonPath, ext string) string {
	if strings.HasSuffix(jsonPath, jsonExt) {
		return strings.TrimSuffix(jsonPath, jsonExt) + ext
	}
	return jsonPath + ext
}

// HeaderPath returns the header artifact path for a JSON output path.
func HeaderPath(jsonPath string) string {
	return SiblingPath(jsonPath, ".h")
}

// MarshalJSON encodes reg with two-space indentation, keeping non-ASCII
// text and HTML characters unescaped.
func MarshalJSON(reg *regulation.StairRegulation) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("configgen: nil regulation")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg); err != nil {
		return nil, fmt.Errorf("configgen: encode regulation: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveJSON writes reg to path, creating parent directories.
func SaveJSON(path string, reg *regulation.StairRegulation) error {
	data, err := MarshalJSON(reg)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("configgen: create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("configgen: write %s: %w", path, err)
	}
	return nil
}
