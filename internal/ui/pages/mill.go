// mill.go — страницы цеха: производство, склад, контроль качества.
package pages

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// Production — оборудование с фильтром, счётчики состояний,
// технологическая цепочка и суточные показатели.
func Production(d ProductionData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw("<h1>")
		h.t("production")
		h.raw(`</h1><section class="stats">`)
		for _, st := range d.Statuses {
			h.raw(`<div class="stat"><span class="stat-title">`)
			h.t(string(st))
			h.raw(`</span><span class="stat-value">`)
			h.text(strconv.Itoa(d.StatusCounts[string(st)]))
			h.raw("</span></div>")
		}

		h.raw(`</section><section class="card"><h2>`)
		h.t("machines")
		h.raw(`</h2><form method="get" action="/production" class="filters"><select name="area">`)
		h.option("", h.tr("allAreas"), false)
		for _, a := range d.Areas {
			h.option(a, a, a == d.Area)
		}
		h.raw(`</select><select name="status">`)
		h.option("", h.tr("allStatuses"), false)
		for _, st := range d.Statuses {
			h.option(string(st), h.tr(string(st)), string(st) == d.Status)
		}
		h.raw(`</select><button type="submit">`)
		h.t("apply")
		h.raw("</button></form>")
		if len(d.Machines) > 0 {
			tableHead(h, "name", "type", "area", "status", "efficiency", "outputMetric", "nextMaintenance")
			for _, m := range d.Machines {
				h.raw("<tr><td>")
				h.text(m.Name)
				h.raw("</td><td>")
				h.text(m.Type)
				h.raw("</td><td>")
				h.text(m.Area)
				h.raw("</td><td>")
				badge(h, string(m.Status))
				h.raw("</td><td>")
				h.text(strconv.Itoa(m.Efficiency), "%")
				h.raw("</td><td>")
				h.text(m.OutputMetric)
				if m.OutputUnit != "" {
					h.text(" (", m.OutputUnit, ")")
				}
				h.raw("</td><td>")
				h.text(formatDatePtr(m.NextMaintenance))
				h.raw("</td></tr>")
			}
			h.raw("</tbody></table>")
		} else {
			noData(h)
		}
		h.raw("</section>")

		if len(d.Flow) > 0 {
			processFlow(h, d.Flow)
		}

		h.raw(`<section class="grid-2"><div class="card"><h2>`)
		h.t("productionMetrics")
		h.raw("</h2>")
		seriesTable(h, d.Series)
		h.raw(`</div><form method="post" action="/production/machines" class="card"><h2>`)
		h.t("addMachine")
		h.raw("</h2><label>")
		h.t("name")
		h.raw(`<input name="name" minlength="2" required></label>`)
		textInput(h, "type", "", true)
		h.raw("<label>")
		h.t("area")
		h.raw(`<input name="area" list="areas" required></label><datalist id="areas">`)
		for _, a := range d.Areas {
			h.raw("<option")
			h.attr("value", a)
			h.raw(">")
		}
		h.raw("</datalist>")
		textInput(h, "model", "", false)
		textInput(h, "manufacturer", "", false)
		h.raw("<label>")
		h.t("installationDate")
		h.raw(`<input type="date" name="installationDate"></label>`)
		textInput(h, "outputMetric", "", true)
		textInput(h, "outputUnit", "", true)
		h.raw("<label>")
		h.t("description")
		h.raw(`<textarea name="description"></textarea></label><button type="submit">`)
		h.t("save")
		h.raw("</button></form></section>")
	}))
}

// processFlow — переходы цепочки: машины, текущая и плановая
// производительность, выполнение плана.
func processFlow(h *html, flow []model.ProcessStage) {
	h.raw(`<section class="card flow"><h2>`)
	h.t("processFlow")
	h.raw(`</h2><p class="muted">`)
	h.t("processFlowDesc")
	h.raw("</p><ol>")
	for _, st := range flow {
		h.raw("<li")
		h.attr("data-stage", st.Key)
		if st.Lagging() {
			h.attr("class", "lagging")
		}
		h.raw(`><div class="flow-head"><span class="flow-number">`)
		h.text(strconv.Itoa(st.Number))
		h.raw("</span><strong>")
		h.t(st.Key)
		h.raw("</strong>")
		badge(h, string(st.Status))
		h.raw(`</div><p class="muted">`)
		h.t(st.Key + "Desc")
		h.raw(`</p><div class="flow-machines">`)
		for _, m := range st.Machines {
			h.raw(`<span class="badge">`)
			h.text(m)
			h.raw("</span>")
		}
		h.raw(`</div><dl><dt>`)
		h.t("currentThroughput")
		h.raw("</dt><dd>")
		h.text(formatNum(st.Current), " kg/h")
		h.raw("</dd><dt>")
		h.t("targetThroughput")
		h.raw("</dt><dd>")
		h.text(formatNum(st.Target), " kg/h")
		h.raw("</dd><dt>")
		h.t("efficiency")
		h.raw("</dt><dd>")
		if pct, ok := st.Efficiency(); ok {
			h.text(strconv.Itoa(pct), "%")
		} else {
			h.text("-")
		}
		h.raw("</dd></dl></li>")
	}
	h.raw("</ol></section>")
}

// Inventory — вкладки разделов, позиции раздела, итоги и форма добавления.
func Inventory(d InventoryData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw("<h1>")
		h.t("inventory")
		h.raw(`</h1><div class="tabs">`)
		for _, c := range d.Categories {
			h.raw("<a")
			h.attr("href", "/inventory?category="+string(c))
			if string(c) == d.Category {
				h.attr("class", "active")
			}
			h.raw(">")
			h.t(CategoryKey(c))
			h.raw("</a>")
		}
		h.raw(`</div><section class="card">`)
		if len(d.Items) > 0 {
			tableHead(h, "", "name", "batch", "quantity", "location", "details", "status")
			for _, it := range d.Items {
				h.raw("<tr><td>")
				h.text(it.ID)
				h.raw("</td><td>")
				h.text(it.Name)
				h.raw("</td><td>")
				h.text(it.BatchNumber)
				h.raw("</td><td>")
				h.text(formatNum(it.Quantity), " ", it.Unit)
				h.raw("</td><td>")
				h.text(it.Location)
				h.raw("</td><td>")
				h.text(itemDetails(it))
				h.raw("</td><td>")
				badge(h, it.Status)
				h.raw("</td></tr>")
			}
			h.raw("</tbody></table>")
		} else {
			noData(h)
		}

		h.raw(`</section><section class="grid-2"><div class="card"><h2>`)
		h.t("inventoryAnalytics")
		h.raw("</h2>")
		totals(h, d.Totals)
		h.raw(`</div><form method="post" action="/inventory/items" class="card"><h2>`)
		h.t("addItem")
		h.raw(`</h2><input type="hidden" name="category"`)
		h.attr("value", d.Category)
		h.raw(">")
		textInput(h, "name", "", true)
		h.raw("<label>")
		h.t("batch")
		h.raw(`<input name="batchNumber"></label><label>`)
		h.t("quantity")
		h.raw(`<input type="number" name="quantity" min="0.01" step="0.01" required></label>`)
		textInput(h, "unit", "kg", true)
		textInput(h, "location", "", false)
		switch model.InventoryCategory(d.Category) {
		case model.CategoryWorkInProgress:
			textInput(h, "stage", "", false)
			textInput(h, "machine", "", false)
		case model.CategoryFinishedGood:
			textInput(h, "count", "", false)
			textInput(h, "packageType", "", false)
		}
		h.raw(`<button type="submit">`)
		h.t("save")
		h.raw("</button></form></section>")
	}))
}

// itemDetails — поля раздела через « · ».
func itemDetails(it *model.InventoryItem) string {
	var parts []string
	for _, p := range []string{it.Stage, it.Machine, it.Count, it.PackageType} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

// qualityParams — поля формы теста и колонки таблицы.
var qualityParams = []string{"twist", "evenness", "tensileStrength", "elongation", "hairiness"}

// Quality — сводка параметров, тревоги, корректирующие действия,
// тесты с поиском и недельный ряд.
func Quality(d QualityData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw("<h1>")
		h.t("quality")
		h.raw(`</h1><section class="stats"><div class="stat"><span class="stat-title">`)
		h.t("qualityRating")
		h.raw(`</span><span class="stat-value">`)
		h.text(formatNum(d.Overall), "%")
		h.raw("</span></div>")
		for _, p := range d.Parameters {
			h.raw(`<div class="stat"><span class="stat-title">`)
			h.t(p.Name)
			h.raw(`</span><span class="stat-value">`)
			h.text(formatNum(p.Value), "%")
			h.raw("</span>")
			badge(h, p.Status)
			h.raw("</div>")
		}
		h.raw("</section>")

		if len(d.Alerts) > 0 {
			h.raw(`<section class="card alerts"><h2>`)
			h.t("qualityAlerts")
			h.raw("</h2><ul>")
			for _, a := range d.Alerts {
				h.raw("<li")
				h.attr("class", "badge-"+string(a.Status))
				h.raw(">")
				h.text(a.ID, " · ", a.Batch, " · ", a.Machine, " · ", h.tr(string(a.Status)))
				h.raw("</li>")
			}
			h.raw("</ul></section>")
		}

		if len(d.Recommendations) > 0 {
			recommendations(h, d.Recommendations)
		}

		h.raw(`<section class="card"><h2>`)
		h.t("qualityMetrics")
		h.raw(`</h2><form method="get" action="/quality" class="filters"><input type="search" name="search"`)
		h.attr("value", d.Search)
		h.raw(` maxlength="100"`)
		h.attr("placeholder", h.tr("search"))
		h.raw(`><button type="submit">`)
		h.t("search")
		h.raw("</button></form>")
		if len(d.Tests) > 0 {
			cols := append([]string{"", "date", "batch", "machine"}, qualityParams...)
			tableHead(h, append(cols, "status")...)
			for _, qt := range d.Tests {
				h.raw("<tr><td>")
				h.text(qt.ID)
				h.raw("</td><td>")
				h.text(formatDate(qt.TestedAt))
				h.raw("</td><td>")
				h.text(qt.Batch)
				h.raw("</td><td>")
				h.text(qt.Machine)
				h.raw("</td>")
				for _, v := range qt.Parameters() {
					h.raw("<td>")
					h.text(formatNum(v))
					h.raw("</td>")
				}
				h.raw("<td>")
				badge(h, string(qt.Status))
				h.raw("</td></tr>")
			}
			h.raw("</tbody></table>")
		} else {
			noData(h)
		}

		h.raw(`</section><section class="grid-2"><div class="card"><h2>`)
		h.t("weeklyTrend")
		h.raw("</h2>")
		seriesTable(h, d.Series)
		h.raw(`</div><form method="post" action="/quality/tests" class="card"><h2>`)
		h.t("addTest")
		h.raw("</h2>")
		textInput(h, "batch", "", true)
		textInput(h, "machine", "", true)
		for _, name := range qualityParams {
			h.raw("<label>")
			h.t(name)
			h.raw(`<input type="number"`)
			h.attr("name", name)
			h.raw(` min="0" max="100" step="0.1" required></label>`)
		}
		h.raw(`<button type="submit">`)
		h.t("save")
		h.raw("</button></form></section>")
	}))
}

// recommendations — корректирующие действия с машиной и ожидаемым эффектом.
func recommendations(h *html, recs []model.Recommendation) {
	h.raw(`<section class="card recommendations"><h2>`)
	h.t("correctiveActions")
	h.raw("</h2><ul>")
	for _, r := range recs {
		h.raw("<li")
		h.attr("data-recommendation", r.ID)
		h.raw("><strong>")
		h.t(r.Key)
		h.raw(`</strong><p class="muted">`)
		h.t(r.Key + "Desc")
		h.raw("</p><small>")
		h.text(h.tr("machine"), ": ", r.Machine, " · ", h.tr("impact"), ": ")
		h.raw("</small>")
		h.raw("<span")
		h.attr("class", "impact-"+string(r.Impact))
		h.raw(">")
		h.t(string(r.Impact))
		h.raw("</span></li>")
	}
	h.raw("</ul></section>")
}

// tableHead открывает таблицу с заголовками; пустой ключ выводится как ID.
func tableHead(h *html, keys ...string) {
	h.raw("<table><thead><tr>")
	for _, k := range keys {
		h.raw("<th>")
		if k == "" {
			h.raw("ID")
		} else {
			h.t(k)
		}
		h.raw("</th>")
	}
	h.raw("</tr></thead><tbody>")
}

// badge — значок состояния с переводом.
func badge(h *html, status string) {
	h.raw("<span")
	h.attr("class", "badge badge-"+status)
	h.raw(">")
	h.t(status)
	h.raw("</span>")
}
