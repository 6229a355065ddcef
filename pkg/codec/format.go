package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cellgraph/pkg/errors"
)

// Format is a document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", s)
}

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal encodes doc. JSON output is indented.
func Marshal(doc Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document.
func Unmarshal(data []byte, f Format) (Document, error) {
	return Read(bytes.NewReader(data), f)
}

// Write encodes doc to w.
func Write(doc Document, f Format, w io.Writer) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	return nil
}

// Read decodes a document from r.
func Read(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
		}
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	return doc, nil
}

// ReadFile reads a document, picking the format from the extension.
func ReadFile(path string) (Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return Read(file, f)
}

// WriteFile writes a document, picking the format from the extension.
// The file is created with 0644 permissions.
func WriteFile(doc Document, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(doc, f, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
