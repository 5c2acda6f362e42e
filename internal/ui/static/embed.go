// Пакет static — CSS и JS интерфейса, встроенные в бинарник
// и раздаваемые по /static/*.
package static

import (
	"embed"
	"io/fs"
)

//go:embed css/*.css js/*.js
var content embed.FS

// FS возвращает встроенные файлы: css/app.css, js/app.js, js/dashboard.js.
func FS() fs.FS {
	return content
}
