// redirect.go — фильтрация адресов возврата.
package middleware

import (
	"net/url"
	"strings"
)

// SafeLocalPath возвращает путь с query, если raw указывает на страницу
// этого же приложения. Абсолютные URL, protocol-relative адреса
// ("//host") и пути с обратным слэшем или переводом строки отклоняются
// как в исходном, так и в декодированном виде ("/%5Chost").
func SafeLocalPath(raw string) (string, bool) {
	if !localPath(raw) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || u.Opaque != "" {
		return "", false
	}
	if !localPath(u.Path) {
		return "", false
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery, true
	}
	return path, true
}

// localPath — путь от корня без второго слэша, обратного слэша и CR/LF.
func localPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return false
	}
	return !strings.ContainsAny(p, "\\\r\n")
}

// SafeReferer извлекает локальный путь из заголовка Referer.
// Referer другого хоста не используется.
func SafeReferer(referer, host string) (string, bool) {
	if referer == "" {
		return "", false
	}
	u, err := url.Parse(referer)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != host {
		return "", false
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return SafeLocalPath(path)
}
