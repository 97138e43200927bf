package templates

import "github.com/a-h/templ"

// Nav entries of the top bar.
const (
	NavImport   = "import"
	NavGrid     = "grid"
	NavEvidence = "evidence"
)

var navItems = []struct {
	key, href, label string
}{
	{NavImport, "/", "Test cases"},
	{NavGrid, "/planilha-manual", "Manual grid"},
	{NavEvidence, "/evidencias", "Evidence"},
}

// Layout wraps body in the page shell.
func Layout(title, active string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(` | casedesk</title>`)
		h.raw(`<link rel="stylesheet" href="/static/casedesk.css">`)
		h.raw(`<script src="/static/htmx.min.js" defer></script>`)
		h.raw(`</head><body hx-headers='{"Accept": "text/html"}'><nav class="topbar">`)
		for _, item := range navItems {
			h.raw("<a")
			h.attr("href", item.href)
			if item.key == active {
				h.raw(` class="active"`)
			}
			h.raw(">")
			h.text(item.label)
			h.raw("</a>")
		}
		h.raw(`</nav><div id="toasts" aria-live="polite"></div><main>`)
		h.component(body)
		h.raw("</main></body></html>")
	})
}
