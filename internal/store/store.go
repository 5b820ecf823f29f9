// Package store persists structured summaries as one JSON object keyed by
// document path, preserving insertion order.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/bull/paper-digest/internal/summary"
)

// DefaultPath is the summary file written when no path is configured.
const DefaultPath = "document_summaries.json"

var (
	// ErrNotFound is returned by Load when the file does not exist.
	ErrNotFound = errors.New("summary store not found")

	// ErrCorrupt is returned by Load when the file is not a valid store.
	ErrCorrupt = errors.New("summary store corrupt")
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// Store is an ordered map of document path to summary. Paths keep the order
// in which they were first added. A Store is not safe for concurrent use.
type Store struct {
	paths     []string
	summaries map[string]summary.StructuredSummary
}

// New returns an empty Store.
func New() *Store {
	return &Store{summaries: make(map[string]summary.StructuredSummary)}
}

// Put adds or replaces the summary for path. A replaced path keeps its position.
func (s *Store) Put(path string, sum summary.StructuredSummary) {
	if _, ok := s.summaries[path]; !ok {
		s.paths = append(s.paths, path)
	}
	s.summaries[path] = sum
}

// Get returns the summary for path.
func (s *Store) Get(path string) (summary.StructuredSummary, bool) {
	sum, ok := s.summaries[path]
	return sum, ok
}

// Paths returns the stored document paths in order.
func (s *Store) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of stored summaries.
func (s *Store) Len() int { return len(s.paths) }

// MarshalJSON encodes the store as a single object in path order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range s.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.summaries[path])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Save writes the store to path as indented UTF-8 JSON. The file is written to
// a temporary sibling and renamed into place.
func (s *Store) Save(path string) error {
	raw, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	data := pretty.PrettyOptions(raw, prettyOptions)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write summaries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Load reads a store written by Save. Object order in the file is preserved.
// Summaries with missing, extra, or non-string fields are rejected.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes store JSON.
func Parse(data []byte) (*Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrCorrupt)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrCorrupt)
	}

	s := New()
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		sum, err := decodeSummary(value)
		if err != nil {
			decodeErr = fmt.Errorf("%w: %q: %v", ErrCorrupt, key.String(), err)
			return false
		}
		s.Put(key.String(), sum)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return s, nil
}

func decodeSummary(value gjson.Result) (summary.StructuredSummary, error) {
	var sum summary.StructuredSummary
	if !value.IsObject() {
		return sum, errors.New("summary is not an object")
	}

	for _, sec := range summary.Sections {
		field := value.Get(sec.Key())
		if !field.Exists() {
			return sum, fmt.Errorf("missing field %q", sec.Key())
		}
		if field.Type != gjson.String {
			return sum, fmt.Errorf("field %q is not a string", sec.Key())
		}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(value.Raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sum); err != nil {
		return sum, err
	}
	return sum, nil
}
