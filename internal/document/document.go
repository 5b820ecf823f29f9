// Package document loads a source file into extracted text and chunks.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bull/paper-digest/internal/chunker"
)

// ErrLoad marks a document that could not be extracted.
var ErrLoad = errors.New("load document")

// PageSeparator joins extracted pages into a document's full text.
const PageSeparator = "\n\n"

// Extractor turns a file into its ordered page texts.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// Document is one loaded source file. FullText and Chunks are never
// modified after Load returns.
type Document struct {
	Path     string
	FullText string
	Chunks   []chunker.Chunk
}

// Loader extracts and chunks documents.
type Loader struct {
	extractor Extractor
	chunker   *chunker.Chunker
}

// NewLoader creates a Loader. A nil chunker uses the default configuration.
func NewLoader(extractor Extractor, c *chunker.Chunker) *Loader {
	if c == nil {
		c = chunker.New()
	}
	return &Loader{extractor: extractor, chunker: c}
}

// Load extracts path and splits its text into chunks.
// Extraction failures are returned wrapped in ErrLoad.
func (l *Loader) Load(ctx context.Context, path string) (*Document, error) {
	pages, err := l.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrLoad, path, err)
	}

	text := strings.Join(pages, PageSeparator)
	return &Document{
		Path:     path,
		FullText: text,
		Chunks:   l.chunker.Chunk(text),
	}, nil
}
