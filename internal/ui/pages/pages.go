// Пакет pages — HTML-страницы UI.
// Каждая страница — типизированный templ.Component (Dashboard, Production,
// Inventory, Quality, Users, Auth, Message), собранный из общего layout
// и собственного содержимого. Ключи i18n переводятся на язык запроса
// функцией перевода из контекста, её ставит Renderer.
package pages

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
)

type contextKey string

const contextKeyTranslator contextKey = "pages_translator"

// WithTranslator помещает функцию перевода в контекст.
func WithTranslator(ctx context.Context, t func(string) string) context.Context {
	return context.WithValue(ctx, contextKeyTranslator, t)
}

// translate переводит ключ; без функции перевода ключ возвращается как есть.
func translate(ctx context.Context, key string) string {
	if t, ok := ctx.Value(contextKeyTranslator).(func(string) string); ok {
		return t(key)
	}
	return key
}

// Renderer отдаёт страницы с переводом на язык запроса.
type Renderer struct {
	bundle *i18n.Bundle
}

// NewRenderer создаёт Renderer.
func NewRenderer(bundle *i18n.Bundle) *Renderer {
	return &Renderer{bundle: bundle}
}

// Render отрисовывает страницу в буфер и отправляет её с кодом status.
// При ошибке рендеринга в ответ ничего не записано.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page templ.Component) error {
	ctx := WithTranslator(req.Context(), r.bundle.Translator(i18n.LangFromContext(req.Context())))

	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return fmt.Errorf("рендеринг страницы: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// formatDate — YYYY-MM-DD, пусто для нулевой даты.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// formatNum — целое без дробной части, иначе один знак.
func formatNum(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CategoryKey возвращает ключ i18n раздела склада.
func CategoryKey(c model.InventoryCategory) string {
	switch c {
	case model.CategoryRawMaterial:
		return "rawMaterials"
	case model.CategoryWorkInProgress:
		return "workInProgress"
	case model.CategoryFinishedGood:
		return "finishedGoods"
	default:
		return string(c)
	}
}

// SeriesKeys возвращает имена рядов в порядке вывода колонок.
func SeriesKeys(series []model.SeriesPoint) []string {
	if len(series) == 0 {
		return nil
	}
	keys := make([]string, 0, len(series[0].Values))
	for k := range series[0].Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NavItem — пункт навигации.
type NavItem struct {
	// Key — ключ i18n названия
	Key    string
	Path   string
	Active bool
}

// Base — общие данные layout.
type Base struct {
	// Title — ключ i18n заголовка страницы
	Title     string
	Nav       []NavItem
	Profile   *model.Profile
	Email     string
	Lang      model.Language
	Languages []model.Language
	// Flash — ключ i18n одноразового уведомления
	Flash string
	// Refresh — интервал meta refresh в секундах (0 — нет)
	Refresh int
	// SSE — подключить поток обновлений dashboard
	SSE bool
}

// SignedIn — есть ли пользователь для шапки.
func (b Base) SignedIn() bool {
	return b.Email != "" || b.Profile != nil
}

// DashboardData — данные главной страницы.
type DashboardData struct {
	Base
	Stats  []model.DashboardStat
	Orders []*model.Order
	Stock  []model.InventoryTotal
}

// ProductionData — данные страницы производства.
type ProductionData struct {
	Base
	Area         string
	Status       string
	Areas        []string
	Statuses     []model.MachineStatus
	Machines     []*model.Machine
	StatusCounts model.StatusCount
	Series       []model.SeriesPoint
	Flow         []model.ProcessStage
}

// InventoryData — данные страницы склада.
type InventoryData struct {
	Base
	Category   string
	Categories []model.InventoryCategory
	Items      []*model.InventoryItem
	Totals     []model.InventoryTotal
}

// QualityData — данные страницы качества.
type QualityData struct {
	Base
	Search     string
	Tests      []*model.QualityTest
	Parameters []model.QualityParameter
	Overall    float64
	Alerts     []*model.QualityTest
	Series     []model.SeriesPoint

	Recommendations []model.Recommendation
}

// UsersData — данные страницы пользователей.
type UsersData struct {
	Base
	RoleFilter string
	Roles      []rbac.Role
	Users      []*model.Profile
}

// AuthData — данные страницы входа.
type AuthData struct {
	Base
	// Mode — sign-in, sign-up или verify
	Mode  string
	From  string
	Email string
	// Code — код подтверждения встроенного поставщика (режим разработки)
	Code string
}

// MessageData — служебная страница (ожидание, отказ).
type MessageData struct {
	Base
	// Message — ключ i18n текста
	Message string
}
