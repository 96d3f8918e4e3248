package templates

import (
	"strings"

	"github.com/a-h/templ"
)

// HeaderData is shown in the top bar of every full page.
type HeaderData struct {
	UserName string
	UserRole string
}

// SidebarData drives the navigation links.
type SidebarData struct {
	ActivePath       string
	PendingApprovals int
}

type navLink struct {
	Href  string
	Label string
}

var navLinks = []navLink{
	{"/", "Dashboard"},
	{"/offers", "Offers"},
	{"/tenders", "Tenders"},
	{"/customers", "Customers"},
}

// toastScript shows HX-Trigger toasts and the flash_toast cookie left by
// non-HTMX redirects.
const toastScript = `<script>
function showToast(d){var c=document.getElementById("toast-container");if(!c||!d)return;var t=document.createElement("div");t.className="toast toast-"+d.type;t.textContent=d.message;c.appendChild(t);setTimeout(function(){t.remove()},5000)}
document.body.addEventListener("showToast",function(e){showToast(e.detail)});
(function(){var m=document.cookie.match(/(?:^|; )flash_toast=([^;]*)/);if(m){try{showToast(JSON.parse(decodeURIComponent(m[1])))}catch(e){}document.cookie="flash_toast=; Max-Age=0; path=/"}})();
</script>`

// Page wraps content in the application shell.
func Page(title string, header HeaderData, sidebar SidebarData, content templ.Component) templ.Component {
	return component(func(b *buf) {
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.raw("<title>")
		b.text(title + " | TenderTrack")
		b.raw("</title>")
		b.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		b.raw(`<link rel="stylesheet" href="/static/app.css"></head><body>`)

		b.raw(`<header class="topbar"><a class="brand" href="/">TenderTrack</a>`)
		if header.UserName != "" {
			b.raw(`<span class="user">`)
			b.text(header.UserName)
			if header.UserRole != "" {
				b.raw(` <small>`)
				b.text(header.UserRole)
				b.raw(`</small>`)
			}
			b.raw(`</span>`)
		}
		b.raw(`</header>`)

		b.raw(`<aside class="sidebar"><nav>`)
		for _, l := range navLinks {
			active := l.Href == sidebar.ActivePath ||
				(l.Href != "/" && strings.HasPrefix(sidebar.ActivePath, l.Href))
			b.raw("<a")
			b.attr("href", l.Href)
			if active {
				b.attr("class", "active")
			}
			b.raw(">")
			b.text(l.Label)
			if l.Href == "/offers" && sidebar.PendingApprovals > 0 {
				b.raw(` <span class="badge">`)
				b.text(itoa(sidebar.PendingApprovals))
				b.raw(`</span>`)
			}
			b.raw("</a>")
		}
		b.raw(`</nav></aside>`)

		b.raw(`<main id="main-content">`)
		b.render(content)
		b.raw(`</main><div id="toast-container"></div>`)
		b.raw(toastScript)
		b.raw(`</body></html>`)
	})
}

// statusBadge renders an offer status pill.
func statusBadge(b *buf, code, label string) {
	b.raw(`<span`)
	b.attr("class", "status status-"+strings.ToLower(code))
	b.raw(">")
	b.text(label)
	b.raw("</span>")
}
