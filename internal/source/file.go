package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/schema"
)

// ReadFile loads the records in a YAML or JSON file.
func ReadFile(path string, s *schema.Schema) ([]schema.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	recs, err := Decode(data, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Decode parses a YAML or JSON list of maps into records of s.
// An empty document is an empty list.
func Decode(data []byte, s *schema.Schema) ([]schema.Record, error) {
	var raws []map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raws); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return s.DecodeAll(raws)
}
