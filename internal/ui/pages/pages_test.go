package pages

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
	"github.com/arjun8815/spinwise-erp/internal/ui/i18n"
)

func newTestRenderer(t *testing.T) (*Renderer, *i18n.Bundle) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		t.Fatalf("LoadFromEmbedFS: %v", err)
	}
	return NewRenderer(bundle), bundle
}

func render(t *testing.T, r *Renderer, lang model.Language, page templ.Component) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), lang))
	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, http.StatusOK, page); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	return rec.Body.String()
}

func signedInBase(title string) Base {
	phone := "+91 98400 00000"
	return Base{
		Title: title,
		Nav:   []NavItem{{Key: "dashboard", Path: "/", Active: title == "dashboard"}, {Key: "production", Path: "/production"}},
		Profile: &model.Profile{
			ID: "u1", Email: "admin@spinwise.local", FirstName: "Arjun", LastName: "Raman",
			Phone: &phone, Role: rbac.RoleAdmin, PreferredLanguage: model.LanguageEnglish,
		},
		Email:     "admin@spinwise.local",
		Lang:      model.LanguageEnglish,
		Languages: model.AllLanguages(),
	}
}

type samplePage struct {
	name string
	page templ.Component
	// header — страница с кнопкой выхода
	header bool
	want   []string
}

// samplePages — все страницы с данными, ключи которых есть в каталоге.
func samplePages() []samplePage {
	now := time.Now()
	series := []model.SeriesPoint{{Label: "Mon", Values: map[string]float64{"production": 120, "efficiency": 90.5}}}

	return []samplePage{
		{
			name: "dashboard",
			page: Dashboard(DashboardData{
				Base:   signedInBase("dashboard"),
				Stats:  []model.DashboardStat{{Key: "dailyProduction", Value: "12,450 kg", Trend: "4%", Positive: true}},
				Orders: []*model.Order{{ID: "ORD-1", Customer: "Sri Textiles", Product: "Cotton 40s", Quantity: "500 kg", Status: "Pending", OrderedAt: now}},
				Stock:  []model.InventoryTotal{{Category: model.CategoryRawMaterial, Items: 3, Quantity: 1200}},
			}),
			header: true,
			want:   []string{`data-key="dailyProduction"`, "ORD-1", "Sri Textiles", "Pending", `id="dep-status"`},
		},
		{
			name: "production",
			page: Production(ProductionData{
				Base:         signedInBase("production"),
				Areas:        []string{"Spinning"},
				Statuses:     []model.MachineStatus{model.MachineRunning, model.MachineIdle},
				Machines:     []*model.Machine{{ID: "M-1", Name: "Ring Frame 1", Type: "ring_frame", Area: "Spinning", Status: model.MachineRunning, Efficiency: 92}},
				StatusCounts: model.StatusCount{"running": 1},
				Series:       series,
				Flow: []model.ProcessStage{
					{Number: 1, Key: "roving", Machines: []string{"Roving Frame 1"}, Status: model.StageWarning, Current: 380, Target: 430},
					{Number: 2, Key: "winding", Machines: []string{"Winding Machine 1"}, Status: model.StageError, Current: 0, Target: 280},
				},
			}),
			header: true,
			want: []string{
				"Ring Frame 1", `action="/production/machines"`, "Mon", "90.5",
				`data-stage="roving" class="lagging"`, "380 kg/h", "430 kg/h", "88%", "Roving Frame 1",
			},
		},
		{
			name: "inventory",
			page: Inventory(InventoryData{
				Base:       signedInBase("inventory"),
				Category:   string(model.CategoryFinishedGood),
				Categories: []model.InventoryCategory{model.CategoryRawMaterial, model.CategoryFinishedGood},
				Items:      []*model.InventoryItem{{ID: "FG-001", Category: model.CategoryFinishedGood, Name: "Cotton Yarn 40s", Quantity: 250, Unit: "kg", Count: "40s", PackageType: "Cone", Status: "ready_for_shipment"}},
				Totals:     []model.InventoryTotal{{Category: model.CategoryFinishedGood, Items: 1, Quantity: 250}},
			}),
			header: true,
			want:   []string{"FG-001", "Cotton Yarn 40s", "40s · Cone", `action="/inventory/items"`, `name="packageType"`},
		},
		{
			name: "quality",
			page: Quality(QualityData{
				Base:       signedInBase("quality"),
				Search:     "B-1",
				Tests:      []*model.QualityTest{{ID: "QT-1", Batch: "B-1", Machine: "RF-1", Evenness: 85, Status: model.QualityWarning, TestedAt: now}},
				Parameters: []model.QualityParameter{{Name: "evenness", Value: 85, Status: "average"}},
				Overall:    91.5,
				Alerts:     []*model.QualityTest{{ID: "QT-1", Batch: "B-1", Machine: "RF-1", Status: model.QualityWarning}},
				Series:     series,

				Recommendations: []model.Recommendation{{ID: "REC001", Key: "adjustDraftingSettings", Impact: model.ImpactHigh, Machine: "RF-1"}},
			}),
			header: true,
			want:   []string{"QT-1", "91.5", `action="/quality/tests"`, `data-recommendation="REC001"`, `class="impact-high"`},
		},
		{
			name: "users",
			page: Users(UsersData{
				Base:  signedInBase("userManagement"),
				Roles: rbac.AllRoles(),
				Users: []*model.Profile{{ID: "u2", Email: "manager@spinwise.local", FirstName: "Priya", LastName: "Subramanian", Role: rbac.RoleManager}},
			}),
			header: true,
			want: []string{
				"manager@spinwise.local", `action="/users/u2"`, `action="/users"`,
				`name="firstName" required value="Priya"`, `name="lastName" required value="Subramanian"`,
				`<option value="manager" selected>`,
			},
		},
		{
			name: "auth",
			page: Auth(AuthData{Base: Base{Title: "signIn", Lang: model.LanguageEnglish, Languages: model.AllLanguages()}, Mode: AuthVerify, Email: "new@spinwise.local", Code: "123456"}),
			want: []string{`action="/auth/verify"`, `value="123456"`, `value="new@spinwise.local"`},
		},
		{
			name: "message",
			page: Message(MessageData{Base: Base{Title: "loading", Refresh: 1}, Message: "loading"}),
			want: []string{`http-equiv="refresh" content="1"`},
		},
	}
}

func TestRender_AllPages(t *testing.T) {
	r, bundle := newTestRenderer(t)
	logout := bundle.Lookup(model.LanguageEnglish, "logout")

	for _, tt := range samplePages() {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, r, model.LanguageEnglish, tt.page)
			if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.HasSuffix(body, "</html>") {
				t.Error("страница не обёрнута в layout")
			}
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("страница не содержит %q", s)
				}
			}
			if tt.header && !strings.Contains(body, logout) {
				t.Errorf("шапка не содержит кнопку выхода %q", logout)
			}
		})
	}
}

// Каждый ключ, который страницы переводят, есть в каталоге.
func TestPages_KeysInCatalog(t *testing.T) {
	_, bundle := newTestRenderer(t)

	for _, tt := range samplePages() {
		t.Run(tt.name, func(t *testing.T) {
			var missing []string
			ctx := WithTranslator(context.Background(), func(key string) string {
				msg := bundle.Lookup(model.LanguageEnglish, key)
				if msg == key {
					missing = append(missing, key)
				}
				return msg
			})
			if err := tt.page.Render(ctx, io.Discard); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if len(missing) > 0 {
				t.Errorf("ключи отсутствуют в каталоге: %v", missing)
			}
		})
	}
}

func TestRender_TranslatesToRequestLanguage(t *testing.T) {
	r, bundle := newTestRenderer(t)
	page := Message(MessageData{Base: Base{Title: "accessDenied"}, Message: "accessDenied"})

	for _, lang := range model.AllLanguages() {
		t.Run(string(lang), func(t *testing.T) {
			body := render(t, r, lang, page)
			want := bundle.Lookup(lang, "accessDenied")
			if want == "accessDenied" {
				t.Fatalf("в каталоге %s нет ключа accessDenied", lang)
			}
			if !strings.Contains(body, template.HTMLEscapeString(want)) {
				t.Errorf("страница не переведена на %s: нет %q", lang, want)
			}
		})
	}
}

func TestRender_EscapesUserInput(t *testing.T) {
	r, _ := newTestRenderer(t)
	payload := `"><script>alert(1)</script>`

	pages := map[string]templ.Component{
		"quality": Quality(QualityData{Base: signedInBase("quality"), Search: payload}),
		"users": Users(UsersData{
			Base:  signedInBase("userManagement"),
			Roles: rbac.AllRoles(),
			Users: []*model.Profile{{ID: "u2", Email: "x@spinwise.local", FirstName: payload, LastName: "L", Role: rbac.RoleEmployee}},
		}),
		"auth": Auth(AuthData{Base: Base{Title: "signIn"}, Mode: AuthSignIn, From: payload, Email: payload}),
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			body := render(t, r, model.LanguageEnglish, page)
			if strings.Contains(body, "<script>alert(1)</script>") {
				t.Error("ввод пользователя не экранирован")
			}
		})
	}
}

func TestAuth_TabsKeepRedirectTarget(t *testing.T) {
	r, _ := newTestRenderer(t)
	body := render(t, r, model.LanguageEnglish, Auth(AuthData{Base: Base{Title: "signIn"}, Mode: AuthSignUp, From: "/quality?search=a&b"}))

	if !strings.Contains(body, `href="/auth?from=%2Fquality%3Fsearch%3Da%26b&amp;mode=sign-in"`) {
		t.Error("вкладка входа не сохраняет from")
	}
	if !strings.Contains(body, `action="/auth/sign-up"`) {
		t.Error("нет формы регистрации")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("соединение закрыто") }

func TestRender_ErrorLeavesResponseEmpty(t *testing.T) {
	r, _ := newTestRenderer(t)
	broken := templ.ComponentFunc(func(context.Context, io.Writer) error { return errors.New("сбой") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, http.StatusOK, page(Base{Title: "loading"}, broken)); err == nil {
		t.Fatal("ожидалась ошибка рендеринга")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("в ответ записано %d байт", rec.Body.Len())
	}

	if err := Message(MessageData{Base: Base{Title: "loading"}, Message: "loading"}).Render(context.Background(), failingWriter{}); err == nil {
		t.Error("ошибка записи не возвращена")
	}
}

func TestFormat(t *testing.T) {
	if got := formatNum(250); got != "250" {
		t.Errorf("formatNum(250) = %q", got)
	}
	if got := formatNum(91.25); got != "91.2" && got != "91.3" {
		t.Errorf("formatNum(91.25) = %q", got)
	}
	if got := formatDatePtr(nil); got != "" {
		t.Errorf("formatDatePtr(nil) = %q", got)
	}
	d := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	if got := formatDate(d); got != "2024-03-09" {
		t.Errorf("formatDate = %q", got)
	}
	var buf bytes.Buffer
	if err := Message(MessageData{Base: Base{Title: "loading"}, Message: "loading"}).Render(context.Background(), &buf); err != nil || !strings.Contains(buf.String(), "<h1>loading</h1>") {
		t.Errorf("без функции перевода ключ выводится как есть: %v %q", err, buf.String())
	}
}

func TestCategoryKey(t *testing.T) {
	tests := map[model.InventoryCategory]string{
		model.CategoryRawMaterial:    "rawMaterials",
		model.CategoryWorkInProgress: "workInProgress",
		model.CategoryFinishedGood:   "finishedGoods",
		"other":                      "other",
	}
	for c, want := range tests {
		if got := CategoryKey(c); got != want {
			t.Errorf("CategoryKey(%q) = %q, ожидалось %q", c, got, want)
		}
	}
}

func TestSeriesKeys(t *testing.T) {
	if got := SeriesKeys(nil); got != nil {
		t.Errorf("SeriesKeys(nil) = %v", got)
	}
	got := SeriesKeys([]model.SeriesPoint{{Label: "Mon", Values: map[string]float64{"target": 1, "output": 2}}})
	if strings.Join(got, ",") != "output,target" {
		t.Errorf("SeriesKeys = %v, ожидалось [output target]", got)
	}
}
