package db

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"oops/internal/corrector"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Export writes snap to w.
func Export(w io.Writer, snap *corrector.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

// Import reads a snapshot written by Export.
func Import(r io.Reader, format Format) (*corrector.Snapshot, error) {
	var snap corrector.Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if snap.Version == 0 {
		snap.Version = corrector.SnapshotVersion
	}
	return &snap, nil
}
