// users.go — управление пользователями (только admin).
package pages

import (
	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// Users — фильтр по роли, список профилей с формой изменения
// и форма добавления пользователя.
func Users(d UsersData) templ.Component {
	return page(d.Base, component(func(h *html) {
		h.raw("<h1>")
		h.t("userManagement")
		h.raw(`</h1><section class="card"><form method="get" action="/users" class="filters"><select name="role">`)
		h.option("", h.tr("allRoles"), false)
		for _, role := range d.Roles {
			h.option(string(role), h.tr(string(role)), string(role) == d.RoleFilter)
		}
		h.raw(`</select><button type="submit">`)
		h.t("apply")
		h.raw("</button></form>")

		if len(d.Users) > 0 {
			tableHead(h, "name", "email", "phone", "role", "language")
			for _, u := range d.Users {
				h.raw("<tr><td>")
				h.text(u.FullName())
				h.raw("</td><td>")
				h.text(u.Email)
				h.raw("</td><td>")
				h.text(derefStr(u.Phone))
				h.raw(`</td><td colspan="2"><form method="post"`)
				h.attr("action", "/users/"+u.ID)
				h.raw(` class="inline"><input name="firstName" required`)
				h.attr("value", u.FirstName)
				h.attr("aria-label", h.tr("firstName"))
				h.raw(`><input name="lastName" required`)
				h.attr("value", u.LastName)
				h.attr("aria-label", h.tr("lastName"))
				h.raw(`><select name="role">`)
				roleOptions(h, d.Roles, u.Role)
				h.raw(`</select><select name="language">`)
				for _, lang := range d.Languages {
					h.option(string(lang), string(lang), lang == u.PreferredLanguage)
				}
				h.raw(`</select><input type="password" name="password" minlength="6" autocomplete="new-password"`)
				h.attr("placeholder", h.tr("newPassword"))
				h.raw(`><button type="submit">`)
				h.t("save")
				h.raw("</button></form></td></tr>")
			}
			h.raw("</tbody></table>")
		} else {
			noData(h)
		}

		h.raw(`</section><form method="post" action="/users" class="card"><h2>`)
		h.t("addUser")
		h.raw("</h2>")
		textInput(h, "firstName", "", true)
		textInput(h, "lastName", "", true)
		h.raw("<label>")
		h.t("email")
		h.raw(`<input type="email" name="email" required></label><label>`)
		h.t("password")
		h.raw(`<input type="password" name="password" minlength="6" required></label><label>`)
		h.t("phone")
		h.raw(`<input type="tel" name="phone" pattern="[0-9+ -]{10,}"></label><label>`)
		h.t("role")
		h.raw(`<select name="role">`)
		roleOptions(h, d.Roles, rbac.RoleEmployee)
		h.raw("</select></label><label>")
		h.t("language")
		h.raw(`<select name="language">`)
		for _, lang := range d.Languages {
			h.option(string(lang), string(lang), false)
		}
		h.raw(`</select></label><button type="submit">`)
		h.t("save")
		h.raw("</button></form>")
	}))
}

func roleOptions(h *html, roles []rbac.Role, selected rbac.Role) {
	for _, role := range roles {
		h.option(string(role), h.tr(string(role)), role == selected)
	}
}
