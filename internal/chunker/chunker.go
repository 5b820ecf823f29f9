// Package chunker splits extracted document text into overlapping fixed-size spans.
package chunker

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 10000

	// DefaultOverlap is the number of characters shared with the previous chunk.
	DefaultOverlap = 1000
)

// Chunk is a contiguous span of document text.
// Start and End are character (rune) offsets into the source text.
type Chunk struct {
	Index int    // Position in document (0, 1, 2...)
	Start int    // Inclusive start offset
	End   int    // Exclusive end offset
	Text  string // Span content
}

// Chunker splits text mechanically, with no sentence or paragraph awareness.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker. Overlap must stay below the chunk size; an
// invalid combination falls back to a quarter of the chunk size.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}
	return c
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into chunks whose starts advance by size-overlap.
// Empty text yields no chunks; text shorter than the chunk size yields one.
func (c *Chunker) Chunk(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	step := c.size - c.overlap

	chunks := make([]Chunk, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+c.size, n)
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == n {
			break
		}
	}

	return chunks
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return texts
}
