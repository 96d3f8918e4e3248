// Package templates holds the server-rendered pages and HTMX partials.
// Components are plain templ.Components so handlers can render them the
// same way whether they come from .templ files or are written in Go.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"tendertrack/services"
)

// buf accumulates the first write error so components can emit markup
// without checking every call.
type buf struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (b *buf) raw(s string) {
	if b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

func (b *buf) rawf(format string, args ...any) {
	b.raw(fmt.Sprintf(format, args...))
}

func (b *buf) text(s string) {
	b.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (b *buf) attr(name, value string) {
	b.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// flag writes a boolean attribute when on is true.
func (b *buf) flag(name string, on bool) {
	if on {
		b.raw(" " + name)
	}
}

// tag writes <name attrs...>text</name>.
func (b *buf) tag(name, class, text string) {
	b.raw("<" + name)
	if class != "" {
		b.attr("class", class)
	}
	b.raw(">")
	b.text(text)
	b.raw("</" + name + ">")
}

func (b *buf) render(c templ.Component) {
	if b.err != nil || c == nil {
		return
	}
	b.err = c.Render(b.ctx, b.w)
}

func component(fn func(b *buf)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &buf{ctx: ctx, w: w}
		fn(b)
		return b.err
	})
}

func itoa(n int) string { return strconv.Itoa(n) }

// fieldError renders the inline message for key, if any.
func fieldError(b *buf, errs map[string]string, key string) {
	if msg, ok := errs[key]; ok {
		b.raw(`<p class="field-error"`)
		b.attr("data-field", key)
		b.raw(">")
		b.text(msg)
		b.raw("</p>")
	}
}

type option struct {
	Value string
	Label string
}

// selectInput renders a labelled <select>. An empty placeholder omits the
// blank option.
func selectInput(b *buf, label, name, value, placeholder string, opts []option, errs map[string]string, errKey string) {
	b.raw(`<label class="field">`)
	b.tag("span", "field-label", label)
	b.raw("<select")
	b.attr("name", name)
	b.raw(">")
	if placeholder != "" {
		b.raw(`<option value="">`)
		b.text(placeholder)
		b.raw("</option>")
	}
	for _, o := range opts {
		b.raw("<option")
		b.attr("value", o.Value)
		b.flag("selected", o.Value == value)
		b.raw(">")
		b.text(o.Label)
		b.raw("</option>")
	}
	b.raw("</select>")
	fieldError(b, errs, errKey)
	b.raw("</label>")
}

// textInput renders a labelled <input>.
func textInput(b *buf, label, inputType, name, value string, errs map[string]string, errKey string) {
	b.raw(`<label class="field">`)
	b.tag("span", "field-label", label)
	b.raw("<input")
	b.attr("type", inputType)
	b.attr("name", name)
	b.attr("value", value)
	b.raw(">")
	fieldError(b, errs, errKey)
	b.raw("</label>")
}

func textArea(b *buf, label, name, value string, errs map[string]string, errKey string) {
	b.raw(`<label class="field">`)
	b.tag("span", "field-label", label)
	b.raw("<textarea")
	b.attr("name", name)
	b.raw(">")
	b.text(value)
	b.raw("</textarea>")
	fieldError(b, errs, errKey)
	b.raw("</label>")
}

// pager renders previous/next and numbered page links for baseURL, which
// must already carry every other query parameter.
func pager(b *buf, baseURL string, p services.Pagination) {
	if p.TotalPages <= 1 {
		return
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	link := func(page int, label string, current bool) {
		href := baseURL + sep + "page=" + itoa(page)
		b.raw("<a")
		b.attr("href", href)
		b.attr("hx-get", href)
		b.attr("hx-target", "#main-content")
		b.attr("hx-push-url", "true")
		if current {
			b.attr("class", "page current")
		} else {
			b.attr("class", "page")
		}
		b.raw(">")
		b.text(label)
		b.raw("</a>")
	}
	b.raw(`<nav class="pagination">`)
	if p.HasPrev() {
		link(p.Page-1, "Previous", false)
	}
	for _, n := range p.PageNumbers() {
		link(n, itoa(n), n == p.Page)
	}
	if p.HasNext() {
		link(p.Page+1, "Next", false)
	}
	b.raw(`<span class="page-summary">`)
	b.text(itoa(p.Total) + " records")
	b.raw("</span></nav>")
}
