// Package report renders stored summaries as a Markdown or HTML digest.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/store"
	"github.com/bull/paper-digest/internal/summary"
)

// DefaultTitle heads a report when none is given.
const DefaultTitle = "Paper Digest"

var sectionHeadings = map[summary.Section]string{
	summary.Overview:        "Overview",
	summary.KeyFindings:     "Key Findings",
	summary.Methodologies:   "Methodologies",
	summary.Recommendations: "Recommendations",
}

// Entry is one document in a report.
type Entry struct {
	Path     string
	Summary  summary.StructuredSummary
	Metadata *metadata.Metadata
}

// Report is a digest of summarized documents with an optional overall summary.
type Report struct {
	Title     string
	Overall   string
	Entries   []Entry
	Generated time.Time
}

// MetadataFunc resolves citation metadata for a document path.
type MetadataFunc func(path string) (*metadata.Metadata, error)

// Collect builds entries from s in store order. Metadata errors leave the
// entry without metadata.
func Collect(s *store.Store, lookup MetadataFunc) []Entry {
	entries := make([]Entry, 0, s.Len())
	for _, path := range s.Paths() {
		sum, _ := s.Get(path)
		e := Entry{Path: path, Summary: sum}
		if lookup != nil {
			if meta, err := lookup(path); err == nil {
				e.Metadata = meta
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// Markdown renders the report. Each document gets a second-level heading so
// the HTML rendering can list them in its table of contents.
func (r Report) Markdown() []byte {
	title := r.Title
	if title == "" {
		title = DefaultTitle
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !r.Generated.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", r.Generated.UTC().Format(time.RFC3339))
	}

	if strings.TrimSpace(r.Overall) != "" {
		b.WriteString("## Overall Summary\n\n")
		b.WriteString(strings.TrimSpace(r.Overall))
		b.WriteString("\n\n")
	}

	for _, e := range r.Entries {
		fmt.Fprintf(&b, "## %s\n\n", entryHeading(e))
		writeCitation(&b, e)
		for _, sec := range summary.Sections {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", sectionHeadings[sec], strings.TrimSpace(e.Summary.Get(sec)))
		}
	}

	return b.Bytes()
}

func entryHeading(e Entry) string {
	if e.Metadata != nil && strings.TrimSpace(e.Metadata.Title) != "" {
		return strings.Join(strings.Fields(e.Metadata.Title), " ")
	}
	return e.Path
}

func writeCitation(b *bytes.Buffer, e Entry) {
	if e.Metadata == nil {
		fmt.Fprintf(b, "- **Document**: `%s`\n\n", e.Path)
		return
	}
	m := e.Metadata
	if len(m.Authors) > 0 {
		fmt.Fprintf(b, "- **Authors**: %s\n", strings.Join(m.Authors, ", "))
	}
	if m.ArxivID != "" {
		fmt.Fprintf(b, "- **arXiv ID**: %s\n", m.ArxivID)
	}
	if m.Published != "" {
		fmt.Fprintf(b, "- **Published**: %s\n", m.Published)
	}
	if m.PDFURL != "" {
		fmt.Fprintf(b, "- **PDF**: <%s>\n", m.PDFURL)
	}
	fmt.Fprintf(b, "- **Document**: `%s`\n\n", e.Path)
}

// Renderer converts report Markdown to HTML with a table of contents.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with automatic heading IDs.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// HTML renders source as a standalone HTML page. A list linking every
// second-level heading is inserted at the top of the body.
func (r *Renderer) HTML(title string, source []byte) ([]byte, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(2),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}
	if list := toc.RenderList(tree); list != nil {
		doc.InsertBefore(doc, doc.FirstChild(), list)
	}

	var body bytes.Buffer
	if err := r.md.Renderer().Render(&body, source, doc); err != nil {
		return nil, fmt.Errorf("render HTML: %w", err)
	}

	if title == "" {
		title = DefaultTitle
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Headings returns the second-level headings of source in order.
func (r *Renderer) Headings(source []byte) ([]string, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))
	tree, err := toc.Inspect(doc, source, toc.MinDepth(2), toc.MaxDepth(2), toc.Compact(true))
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	var out []string
	collectTitles(tree.Items, &out)
	return out, nil
}

func collectTitles(items toc.Items, out *[]string) {
	for _, item := range items {
		if len(item.Title) > 0 {
			*out = append(*out, string(item.Title))
		}
		collectTitles(item.Items, out)
	}
}
