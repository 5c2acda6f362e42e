// dashboard.go — главная страница.
package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// Dashboard — показатели, заказы клиентов, остатки склада и блок
// состояния зависимостей (заполняется потоком SSE).
func Dashboard(d DashboardData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw("<h1>")
		h.t("overview")
		h.raw(`</h1><section class="stats" id="dashboard-stats">`)
		for _, s := range d.Stats {
			h.raw(`<div class="stat"`)
			h.attr("data-key", s.Key)
			h.raw(`><span class="stat-title">`)
			h.t(s.Key)
			h.raw(`</span><span class="stat-value">`)
			h.text(s.Value)
			h.raw("</span>")
			if s.Trend != "" {
				if s.Positive {
					h.raw(`<span class="trend up">▲ `)
				} else {
					h.raw(`<span class="trend down">▼ `)
				}
				h.text(s.Trend)
				h.raw("</span>")
			}
			h.raw("</div>")
		}
		h.raw(`</section><section class="grid-2"><div class="card"><h2>`)
		h.t("customerOrders")
		h.raw("</h2>")
		if len(d.Orders) > 0 {
			tableHead(h, "", "customer", "product", "quantity", "status", "date")
			for _, o := range d.Orders {
				h.raw("<tr><td>")
				h.text(o.ID)
				h.raw("</td><td>")
				h.text(o.Customer)
				h.raw("</td><td>")
				h.text(o.Product)
				h.raw("</td><td>")
				h.text(o.Quantity)
				h.raw(`</td><td><span class="badge">`)
				h.text(o.Status)
				h.raw("</span></td><td>")
				h.text(formatDate(o.OrderedAt))
				h.raw("</td></tr>")
			}
			h.raw("</tbody></table>")
		} else {
			noData(h)
		}
		h.raw(`</div><div class="card"><h2>`)
		h.t("stockStatus")
		h.raw("</h2>")
		if len(d.Stock) > 0 {
			totals(h, d.Stock)
		} else {
			noData(h)
		}
		h.raw(`</div></section><section class="card" id="dep-status" hidden><h2>`)
		h.t("systemStatus")
		h.raw(`</h2><ul class="deps"></ul></section>`)
	}))
}

// totals — итоги разделов склада.
func totals(h *html, items []model.InventoryTotal) {
	h.raw(`<ul class="totals">`)
	for _, tot := range items {
		h.raw("<li><span>")
		h.t(CategoryKey(tot.Category))
		h.raw("</span><strong>")
		h.text(formatNum(tot.Quantity))
		h.raw("</strong><small>")
		h.text(strconv.Itoa(tot.Items), " ", h.tr("items"))
		h.raw("</small></li>")
	}
	h.raw("</ul>")
}

func noData(h *html) {
	h.raw(`<p class="muted">`)
	h.t("noData")
	h.raw("</p>")
}

// seriesTable — временной ряд таблицей: строка на точку, колонка на ряд.
func seriesTable(h *html, series []model.SeriesPoint) {
	keys := SeriesKeys(series)
	h.raw("<table><thead><tr><th></th>")
	for _, k := range keys {
		h.raw("<th>")
		h.t(k)
		h.raw("</th>")
	}
	h.raw("</tr></thead><tbody>")
	for _, p := range series {
		h.raw("<tr><td>")
		h.text(p.Label)
		h.raw("</td>")
		for _, k := range keys {
			h.raw("<td>")
			h.text(formatNum(p.Values[k]))
			h.raw("</td>")
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}
