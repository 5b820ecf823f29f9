package mcp

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Paper Digest MCP Server</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #f8fafc; color: #0f172a; margin: 0; padding: 3rem 1rem; }
  .card { max-width: 640px; margin: 0 auto; background: #fff; border: 1px solid #e2e8f0; border-radius: 10px; padding: 2rem; }
  h1 { font-size: 1.6rem; margin: 0 0 0.5rem; }
  .subtitle { color: #475569; margin-bottom: 1.5rem; }
  .section-title { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.08em; color: #64748b; margin: 1.25rem 0 0.5rem; }
  code, .endpoint { font-family: "SF Mono", Menlo, monospace; font-size: 0.9rem; }
  ul { padding-left: 1.2rem; margin: 0; }
  li { margin: 0.25rem 0; }
  a { color: #0369a1; }
</style>
</head>
<body>
<div class="card">
  <h1>Paper Digest MCP Server</h1>
  <p class="subtitle">Structured summaries and cited cross-paper synthesis for research PDFs via the Model Context Protocol.</p>

  <div class="section-title">Endpoints</div>
  <ul>
    <li><a href="/mcp" class="endpoint">/mcp</a> MCP Streamable HTTP</li>
    <li><a href="/health" class="endpoint">/health</a> Health check</li>
  </ul>

  <div class="section-title">Tools</div>
  <ul>
    <li><code>summarize_documents</code></li>
    <li><code>list_summaries</code></li>
    <li><code>get_summary</code></li>
    <li><code>overall_summary</code></li>
    <li><code>recent_metadata</code></li>
  </ul>
</div>
</body>
</html>`

// NewLandingHandler returns an HTTP handler that serves the landing page at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(landingHTML))
	}
}
