package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes characters with special meaning in Telegram HTML parse mode.
// User-supplied text must pass through this before interpolation into HTML templates.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Bold wraps text in HTML bold tags without escaping it.
func Bold(text string) string {
	return "<b>" + text + "</b>"
}

// Italic wraps text in HTML italic tags without escaping it.
func Italic(text string) string {
	return "<i>" + text + "</i>"
}

// Code wraps text in HTML code tags without escaping it.
func Code(text string) string {
	return "<code>" + text + "</code>"
}

// Link renders an HTML anchor. The label is escaped, the URL is not.
func Link(url, label string) string {
	return `<a href="` + url + `">` + EscapeHTML(label) + "</a>"
}
