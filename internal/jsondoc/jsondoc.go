// Package jsondoc reads and writes the intermediate JSON documents each
// pipeline stage persists for the next.
package jsondoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes v as indented JSON to path, creating parent directories.
func Save(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads the JSON document at path into dst. A missing file is the one
// fatal stage condition: the previous stage never ran.
func Load(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input %s not found, run the previous stage first: %w", path, err)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
