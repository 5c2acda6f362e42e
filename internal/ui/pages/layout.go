// layout.go — общий каркас страницы: шапка с навигацией, выбор языка,
// flash-уведомление.
package pages

import (
	"strconv"

	"github.com/a-h/templ"
)

// page оборачивает содержимое content в layout.
func page(b Base, content templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw("<!DOCTYPE html>\n<html")
		h.attr("lang", string(b.Lang))
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		if b.Refresh > 0 {
			h.raw(`<meta http-equiv="refresh"`)
			h.attr("content", strconv.Itoa(b.Refresh))
			h.raw(">")
		}
		h.raw("<title>")
		h.t(b.Title)
		h.raw(` · SpinWise</title><link rel="stylesheet" href="/static/css/app.css"></head>`)

		h.raw(`<body><header class="topbar"><a class="brand" href="/">SpinWise</a>`)
		if len(b.Nav) > 0 {
			h.raw("<nav>")
			for _, item := range b.Nav {
				h.raw("<a")
				h.attr("href", item.Path)
				if item.Active {
					h.attr("class", "active")
				}
				h.raw(">")
				h.t(item.Key)
				h.raw("</a>")
			}
			h.raw("</nav>")
		}

		h.raw(`<div class="topbar-right"><form method="post" action="/language" class="inline"><label for="lang-select">`)
		h.t("language")
		h.raw(`</label><select id="lang-select" name="lang" data-autosubmit>`)
		for _, lang := range b.Languages {
			h.option(string(lang), string(lang), lang == b.Lang)
		}
		h.raw(`</select><noscript><button type="submit">`)
		h.t("save")
		h.raw("</button></noscript></form>")

		if b.SignedIn() {
			h.raw(`<span class="user">`)
			if b.Profile != nil {
				h.text(b.Profile.FullName(), " · ", h.tr(string(b.Profile.Role)))
			} else {
				h.text(b.Email)
			}
			h.raw(`</span><form method="post" action="/logout" class="inline"><button type="submit">`)
			h.t("logout")
			h.raw("</button></form>")
		}
		h.raw("</div></header>")

		if b.Flash != "" {
			h.raw(`<div class="flash" role="alert">`)
			h.t(b.Flash)
			h.raw("</div>")
		}

		h.raw("<main>")
		h.render(content)
		h.raw(`</main><script src="/static/js/app.js" defer></script>`)
		if b.SSE {
			h.raw(`<script src="/static/js/dashboard.js" defer></script>`)
		}
		h.raw("</body></html>")
	})
}

// Message — служебная страница: ожидание сессии, отказ в доступе, ошибка загрузки.
func Message(d MessageData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw(`<section class="message"><h1>`)
		h.t(d.Title)
		h.raw("</h1><p>")
		h.t(d.Message)
		h.raw("</p>")
		if d.Refresh == 0 {
			h.raw(`<p><a href="/">`)
			h.t("dashboard")
			h.raw("</a></p>")
		}
		h.raw("</section>")
	}))
}
