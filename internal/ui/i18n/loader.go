// loader.go — встроенные каталоги переводов и их загрузка.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"sort"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// localeFS — locales/<язык>.json для каждого model.AllLanguages().
//
//go:embed locales/*.json
var localeFS embed.FS

// LoadFromEmbedFS загружает встроенные каталоги всех языков.
// Ключи, которых нет в каталоге языка, но есть в english, попадают
// в журнал: на странице они отобразятся как есть.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	langs := model.AllLanguages()
	for _, lang := range langs {
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	for _, lang := range langs {
		if missing := bundle.Missing(model.DefaultLanguage, lang); len(missing) > 0 {
			logger.Warn("В каталоге не хватает переводов",
				slog.String("lang", string(lang)),
				slog.Int("missing", len(missing)),
				slog.Any("keys", missing),
			)
		}
	}

	logger.Info("i18n каталоги загружены", slog.Int("languages", len(langs)))
	return nil
}

// Missing возвращает отсортированные ключи каталога base,
// которых нет в каталоге lang.
func (b *Bundle) Missing(base, lang model.Language) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var missing []string
	for key := range b.catalogs[base] {
		if msg, ok := b.catalogs[lang][key]; !ok || msg == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
