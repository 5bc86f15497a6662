package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "didathing/internal/platform/errors"
)

type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

func ParseEncoding(raw string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return EncodingJSON, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json or yaml): %w", raw, apperrors.ErrInvalidInput)
	}
}

func Encode(doc Document, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml export: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml export: %w", err)
		}
		return buf.Bytes(), nil
	default:
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json export: %w", err)
		}
		return append(payload, '\n'), nil
	}
}

// Decode reads a JSON or YAML export; JSON is recognised by its opening brace.
func Decode(payload []byte) (Document, error) {
	doc := Document{}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("export is empty: %w", apperrors.ErrInvalidInput)
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("decode json export: %v: %w", err, apperrors.ErrInvalidInput)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml export: %v: %w", err, apperrors.ErrInvalidInput)
	}
	return doc, nil
}
