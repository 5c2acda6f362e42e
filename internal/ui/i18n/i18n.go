// Пакет i18n — локализация интерфейса SpinWise.
// Bundle хранит плоские каталоги «ключ → строка» для пяти языков.
// Отсутствующий ключ возвращается как есть, без цепочки fallback:
// перевод на другой язык никогда не подставляется.
// Язык определяется middleware: cookie "spinwise-language" →
// Accept-Language → english.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

var (
	// supportedTags — теги BCP 47 в том же порядке, что model.AllLanguages().
	supportedTags = []language.Tag{
		language.English,
		language.Tamil,
		language.Telugu,
		language.Hindi,
		language.Kannada,
	}

	// matcher — языковой matcher для Accept-Language.
	matcher = language.NewMatcher(supportedTags)
)

// contextKey — тип ключа для контекста (избегаем коллизий).
type contextKey string

const (
	// contextKeyLang — текущий язык в контексте запроса.
	contextKeyLang contextKey = "i18n_lang"
)

// Bundle — хранилище переводов для всех языков.
// Загружается один раз при старте, передаётся компонентам явно.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[model.Language]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[model.Language]map[string]string),
		logger:   logger,
	}
}

// LoadMessages загружает JSON-каталог переводов для указанного языка.
// JSON формат: {"key": "translation", ...} (плоский).
func (b *Bundle) LoadMessages(lang model.Language, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", string(lang)),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Lookup возвращает перевод ключа для языка.
// Если ключа нет в каталоге языка (или нет самого каталога) —
// возвращает ключ без изменений.
func (b *Bundle) Lookup(lang model.Language, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if catalog, ok := b.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok && msg != "" {
			return msg
		}
	}
	return key
}

// Translator возвращает функцию перевода, привязанную к языку.
func (b *Bundle) Translator(lang model.Language) func(string) string {
	return func(key string) string {
		return b.Lookup(lang, key)
	}
}

// Keys возвращает количество ключей в каталоге языка.
func (b *Bundle) Keys(lang model.Language) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.catalogs[lang])
}

// --- Контекст запроса ---

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang model.Language) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. Default: english.
func LangFromContext(ctx context.Context) model.Language {
	if lang, ok := ctx.Value(contextKeyLang).(model.Language); ok && lang != "" {
		return lang
	}
	return model.DefaultLanguage
}

// T возвращает перевод ключа на язык из контекста.
func (b *Bundle) T(ctx context.Context, key string) string {
	return b.Lookup(LangFromContext(ctx), key)
}

// MatchLanguage определяет лучший язык из заголовка Accept-Language.
func MatchLanguage(acceptLanguage string) model.Language {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	langs := model.AllLanguages()
	if idx < 0 || idx >= len(langs) {
		return model.DefaultLanguage
	}
	return langs[idx]
}
