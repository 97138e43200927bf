package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// EvidencePage is the evidence upload and dispatch page.
func EvidencePage(stats core.EvidenceStats, list []core.Evidence) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="evidence-upload"><h2>Test-run log</h2>`)
		h.raw(`<form hx-post="/api/evidence/upload" hx-encoding="multipart/form-data" hx-target="#evidence-status">`)
		h.raw(`<input type="file" name="log_file" accept=".html,.htm" required>`)
		h.raw(`<button type="submit">Process log</button></form></section>`)

		h.raw(`<section id="evidence-status">`)
		h.component(EvidenceStatus(stats))
		h.raw(`</section><section id="evidence-list">`)
		h.component(EvidenceList(list))
		h.raw(`</section>`)

		h.raw(`<section class="evidence-send"><form hx-post="/api/evidence/send" hx-target="#toasts" hx-swap="afterbegin">`)
		h.raw(`<label for="issue_keys">Issues (comma separated)</label>`)
		h.raw(`<input id="issue_keys" name="issue_keys" placeholder="PROJ-1, PROJ-2">`)
		h.raw(`<button type="submit">Send evidence</button></form>`)
		h.raw(`<button hx-post="/api/evidence/clear" hx-target="#evidence-list" hx-confirm="Remove all extracted evidence?">Clear</button>`)
		h.raw(`</section>`)
	})
	return Layout("Evidence", NavEvidence, body)
}

// EvidenceStatus renders the counters of the last processed log.
func EvidenceStatus(stats core.EvidenceStats) templ.Component {
	return component(func(h *htmlWriter) {
		if !stats.Processado {
			h.raw(`<p class="empty">No log processed yet.</p>`)
			return
		}
		h.raw(`<dl class="stats"><dt>Total</dt><dd>`)
		h.int(stats.Total)
		h.raw(`</dd><dt>Passed</dt><dd>`)
		h.int(stats.Sucessos)
		h.raw(`</dd><dt>Failed</dt><dd>`)
		h.int(stats.Falhas)
		h.raw(`</dd><dt>Sent</dt><dd>`)
		h.int(stats.Enviados)
		h.raw(`</dd></dl>`)
	})
}

// EvidenceList renders the extracted evidence files.
func EvidenceList(list []core.Evidence) templ.Component {
	return component(func(h *htmlWriter) {
		if len(list) == 0 {
			h.raw(`<p class="empty">No evidence extracted.</p>`)
			return
		}
		h.raw(`<table class="evidence"><thead><tr><th>Name</th><th>File</th><th>Status</th></tr></thead><tbody>`)
		for _, ev := range list {
			h.raw("<tr><td>")
			h.text(ev.Nome)
			h.raw("</td><td>")
			h.text(ev.Arquivo)
			h.raw("</td><td")
			h.attr("class", "status-"+ev.Status)
			h.raw(">")
			h.text(ev.Status)
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table>`)
	})
}
