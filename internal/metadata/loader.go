// Package metadata reads the bibliographic records that accompany scraped papers.
//
// A record for "papers/2401.01234.pdf" is the file "2401.01234.json", looked up
// next to the PDF first and then in the loader's metadata directory.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalid marks a metadata file that exists but cannot be decoded.
var ErrInvalid = errors.New("invalid metadata")

// Metadata describes one paper.
type Metadata struct {
	ArxivID   string   `json:"arxiv_id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"`
	Summary   string   `json:"summary"`
	PDFURL    string   `json:"pdf_url"`
}

// Entry is a metadata record found by ListRecent.
type Entry struct {
	File     string
	Modified time.Time
	Metadata *Metadata
}

// Loader resolves metadata files for documents.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader. dir may be empty, in which case only sibling
// files are consulted and ListRecent returns nothing.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// Dir returns the metadata directory.
func (l *Loader) Dir() string { return l.dir }

// Load returns the metadata for the document at docPath, or (nil, nil) when no
// metadata file exists.
func (l *Loader) Load(docPath string) (*Metadata, error) {
	for _, candidate := range l.candidates(docPath) {
		meta, err := readFile(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded metadata", "path", docPath, "file", candidate)
		return meta, nil
	}
	return nil, nil
}

func (l *Loader) candidates(docPath string) []string {
	name := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath)) + ".json"
	sibling := filepath.Join(filepath.Dir(docPath), name)

	out := []string{sibling}
	if l.dir != "" {
		if inDir := filepath.Join(l.dir, name); filepath.Clean(inDir) != filepath.Clean(sibling) {
			out = append(out, inDir)
		}
	}
	return out
}

// ListRecent returns up to n records from the metadata directory, most recently
// modified first. Unreadable records are logged and skipped.
func (l *Loader) ListRecent(n int) ([]Entry, error) {
	if l.dir == "" || n <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata dir: %w", err)
	}

	var files []Entry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, Entry{File: filepath.Join(l.dir, e.Name()), Modified: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].File < files[j].File
		}
		return files[i].Modified.After(files[j].Modified)
	})

	out := make([]Entry, 0, min(n, len(files)))
	for _, f := range files {
		if len(out) == n {
			break
		}
		meta, err := readFile(f.File)
		if err != nil {
			l.logger.Warn("Skipping metadata file", "file", f.File, "error", err)
			continue
		}
		f.Metadata = meta
		out = append(out, f)
	}
	return out, nil
}

func readFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return &meta, nil
}
