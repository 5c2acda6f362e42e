// html.go — запись HTML из компонентов: экранирование текста и атрибутов,
// перевод ключей на язык запроса.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// html копит первую ошибку записи, компонент возвращает её в конце.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTML(ctx context.Context, w io.Writer) *html {
	return &html{ctx: ctx, w: w}
}

// raw пишет разметку без экранирования.
func (h *html) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// text пишет экранированный текст.
func (h *html) text(parts ...string) {
	for _, p := range parts {
		h.raw(templ.EscapeString(p))
	}
}

// attr пишет атрибут name="value" с экранированным значением.
func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// flag пишет атрибут без значения, если cond.
func (h *html) flag(name string, cond bool) {
	if cond {
		h.raw(" ", name)
	}
}

// tr возвращает перевод ключа.
func (h *html) tr(key string) string {
	return translate(h.ctx, key)
}

// t пишет экранированный перевод ключа.
func (h *html) t(key string) {
	h.text(h.tr(key))
}

// option пишет <option>, label выводится как есть.
func (h *html) option(value, label string, selected bool) {
	h.raw("<option")
	h.attr("value", value)
	h.flag("selected", selected)
	h.raw(">")
	h.text(label)
	h.raw("</option>")
}

// render вставляет дочерний компонент.
func (h *html) render(c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// component оборачивает функцию записи в templ.Component.
func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		fn(h)
		return h.err
	})
}
