// Package output writes the JSON artifacts read by the charting front end.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is one JSON document and the file name it is published under.
type Artifact struct {
	Name     string
	Document any
}

// Encode renders v as two-space indented JSON with a trailing newline.
// Struct fields keep declaration order and map keys are sorted, so equal
// inputs give identical bytes.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer publishes artifacts into one directory.
type Writer struct {
	Dir string
}

// Write encodes the artifact and replaces its file atomically. It returns
// the path written and the byte count.
func (w Writer) Write(a Artifact) (string, int, error) {
	data, err := Encode(a.Document)
	if err != nil {
		return "", 0, fmt.Errorf("encoding %s: %w", a.Name, err)
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, "."+a.Name+".*")
	if err != nil {
		return "", 0, fmt.Errorf("creating temp file for %s: %w", a.Name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("writing %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("closing %s: %w", a.Name, err)
	}

	path := filepath.Join(w.Dir, a.Name)
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", 0, fmt.Errorf("chmod %s: %w", a.Name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("publishing %s: %w", a.Name, err)
	}
	return path, len(data), nil
}
