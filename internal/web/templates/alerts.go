package templates

import "github.com/a-h/templ"

// ErrorAlert renders a failure message with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return notice("alert alert-error", "alert", message, action, code)
}

// WarningToast renders a non-fatal notification.
func WarningToast(message, action, code string) templ.Component {
	return notice("toast toast-warning", "status", message, action, code)
}

// SuccessToast renders a confirmation.
func SuccessToast(message string) templ.Component {
	return notice("toast toast-success", "status", message, "", "")
}

func notice(class, role, message, action, code string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<div")
		h.attr("class", class)
		h.attr("role", role)
		h.raw("><strong>")
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<p>")
			h.text(action)
			h.raw("</p>")
		}
		if code != "" {
			h.raw(`<small class="code">`)
			h.text(code)
			h.raw("</small>")
		}
		h.raw("</div>")
	})
}
