package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/api/middleware"
	"github.com/arjun8815/spinwise-erp/internal/domain/guard"
	"github.com/arjun8815/spinwise-erp/internal/identity"
	"github.com/arjun8815/spinwise-erp/internal/profile"
	"github.com/arjun8815/spinwise-erp/internal/repository"
	"github.com/arjun8815/spinwise-erp/internal/service"
)

const (
	adminID    = "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b01"
	managerID  = "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b02"
	employeeID = "7f3c1a2e-5b8d-4c1e-9a0f-1d2e3f4a5b03"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv — API поверх засеянных репозиториев в памяти
// и встроенного поставщика учётных записей.
type testEnv struct {
	store  *repository.MemoryStore
	router http.Handler
}

func setupEnv(t *testing.T, policy guard.NullRolePolicy) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	store := repository.NewMemoryStore(true)
	if err := service.SeedProfiles(ctx, store.Profiles, identity.SeedUsers(), logger); err != nil {
		t.Fatalf("SeedProfiles: %v", err)
	}
	provider, err := identity.NewMemory(logger)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	h := NewAPIHandler(NewHealthHandler(nil, nil), Services{
		Auth:       service.NewAuthService(provider, store.Profiles, logger),
		Dashboard:  service.NewDashboardService(store.Orders, store.Inventory, store.Quality, store.Profiles, logger),
		Production: service.NewProductionService(store.Machines, logger),
		Inventory:  service.NewInventoryService(store.Inventory, logger),
		Quality:    service.NewQualityService(store.Quality, logger),
		Users:      service.NewUserService(provider, store.Profiles, store.Profiles, logger),
	}, policy, logger)

	return &testEnv{store: store, router: generated.Handler(h)}
}

// claimsFor возвращает claims пользователя с профилем из репозитория.
func (e *testEnv) claimsFor(t *testing.T, userID string) *middleware.AuthClaims {
	t.Helper()
	res := profile.NewResolver(e.store.Profiles, testLogger()).Resolve(context.Background(), userID)
	return &middleware.AuthClaims{Subject: userID, Profile: res.Profile, ProfileState: res.State}
}

// do выполняет запрос с claims в контексте (nil — без аутентификации).
func (e *testEnv) do(t *testing.T, claims *middleware.AuthClaims, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp generated.Error
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("тело ошибки: %v (%s)", err, rec.Body.String())
	}
	return resp.Error.Code
}

func TestRoleEnforcement(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	admin := env.claimsFor(t, adminID)
	manager := env.claimsFor(t, managerID)
	employee := env.claimsFor(t, employeeID)
	noProfile := &middleware.AuthClaims{Subject: "ghost", ProfileState: profile.StateNotFound}

	tests := []struct {
		name   string
		claims *middleware.AuthClaims
		path   string
		want   int
	}{
		{"без аутентификации", nil, "/api/v1/dashboard", http.StatusUnauthorized},
		{"employee: сводка", employee, "/api/v1/dashboard", http.StatusOK},
		{"employee: производство", employee, "/api/v1/machines", http.StatusOK},
		{"employee: качество", employee, "/api/v1/quality/tests", http.StatusOK},
		{"employee: склад", employee, "/api/v1/inventory", http.StatusForbidden},
		{"manager: склад", manager, "/api/v1/inventory", http.StatusOK},
		{"manager: аналитика склада", manager, "/api/v1/inventory/analytics", http.StatusOK},
		{"manager: пользователи", manager, "/api/v1/users", http.StatusForbidden},
		{"admin: пользователи", admin, "/api/v1/users", http.StatusOK},
		{"без профиля, open: пользователи", noProfile, "/api/v1/users", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.claims, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("статус = %d, ожидался %d, тело: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusForbidden && errorCode(t, rec) != "FORBIDDEN" {
				t.Errorf("код ошибки = %s", errorCode(t, rec))
			}
		})
	}
}

func TestRoleEnforcement_FailClosed(t *testing.T) {
	env := setupEnv(t, guard.NullRoleDeny)
	noProfile := &middleware.AuthClaims{Subject: "ghost", ProfileState: profile.StateFailed}

	rec := env.do(t, noProfile, http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("статус = %d, ожидался 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Профиль") {
		t.Errorf("тело = %s", rec.Body.String())
	}

	// /auth/me доступен и без профиля
	rec = env.do(t, noProfile, http.MethodGet, "/api/v1/auth/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: статус = %d", rec.Code)
	}
	var me generated.MeResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me.ProfileState != generated.ProfileStateFailed || me.Profile != nil {
		t.Errorf("me = %+v", me)
	}
}

func TestSignInAndRefresh(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)

	rec := env.do(t, nil, http.MethodPost, "/api/v1/auth/sign-in", `{"email":"manager@spinwise.local","password":"manager123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var tok generated.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if tok.UserId != managerID || tok.AccessToken == "" || tok.RefreshToken == "" {
		t.Fatalf("токены = %+v", tok)
	}

	rec = env.do(t, nil, http.MethodPost, "/api/v1/auth/refresh", `{"refreshToken":"`+tok.RefreshToken+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: статус = %d", rec.Code)
	}

	// refresh token одноразовый
	rec = env.do(t, nil, http.MethodPost, "/api/v1/auth/refresh", `{"refreshToken":"`+tok.RefreshToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("повторный refresh: статус = %d, ожидался 401", rec.Code)
	}
}

func TestSignIn_Errors(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"неверный пароль", `{"email":"admin@spinwise.local","password":"nope"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"неизвестный email", `{"email":"who@spinwise.local","password":"x"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"невалидный email", `{"email":"not-an-email","password":"x"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"невалидный JSON", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, nil, http.MethodPost, "/api/v1/auth/sign-in", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("статус = %d, ожидался %d", rec.Code, tt.want)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("код = %s, ожидался %s", got, tt.code)
			}
		})
	}
}

func TestGetMe(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	claims := env.claimsFor(t, adminID)
	claims.Email = "admin@spinwise.local"

	rec := env.do(t, claims, http.MethodGet, "/api/v1/auth/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var me generated.MeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatal(err)
	}
	if me.UserId != adminID || me.ProfileState != generated.ProfileStateResolved {
		t.Errorf("me = %+v", me)
	}
	if me.Profile == nil || me.Profile.Role != generated.RoleAdmin {
		t.Errorf("профиль = %+v", me.Profile)
	}
}

func TestDashboard(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)

	rec := env.do(t, env.claimsFor(t, employeeID), http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var d generated.DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if len(d.Stats) != 6 {
		t.Errorf("карточек = %d, ожидалось 6", len(d.Stats))
	}
	if len(d.Orders) == 0 || len(d.Stock) != 3 {
		t.Errorf("заказов = %d, разделов склада = %d", len(d.Orders), len(d.Stock))
	}
	if !strings.Contains(rec.Body.String(), `"orderedAt":"20`) {
		t.Errorf("orderedAt должен быть датой YYYY-MM-DD: %s", rec.Body.String())
	}
}

func TestMachines(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	employee := env.claimsFor(t, employeeID)

	rec := env.do(t, employee, http.MethodPost, "/api/v1/machines",
		`{"name":"Ring Frame 11","type":"Ring Frame","area":"Spinning","installationDate":"2024-03-01","outputMetric":"Spindle speed","outputUnit":"rpm"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("создание: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var m generated.Machine
	_ = json.Unmarshal(rec.Body.Bytes(), &m)
	if m.Status != generated.MachineStatusIdle || m.Efficiency != 0 {
		t.Errorf("новое оборудование = %+v", m)
	}
	if m.InstallationDate == nil || m.InstallationDate.String() != "2024-03-01" {
		t.Errorf("installationDate = %v", m.InstallationDate)
	}

	rec = env.do(t, employee, http.MethodGet, "/api/v1/machines?status=idle", "")
	var list generated.MachineListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	found := false
	for _, it := range list.Items {
		if it.Status != generated.MachineStatusIdle {
			t.Errorf("фильтр status=idle вернул %s", it.Status)
		}
		if it.Id == m.Id {
			found = true
		}
	}
	if !found {
		t.Error("новое оборудование не найдено в списке")
	}

	rec = env.do(t, employee, http.MethodPost, "/api/v1/machines", `{"name":"X","type":"t","area":"a","outputMetric":"m","outputUnit":"u"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("короткое имя: статус = %d, ожидался 400", rec.Code)
	}

	rec = env.do(t, employee, http.MethodGet, "/api/v1/production/metrics", "")
	var pm generated.ProductionMetricsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &pm)
	if len(pm.Series) != 8 || pm.StatusCounts["idle"] == 0 {
		t.Errorf("показатели = %+v", pm)
	}
	if len(pm.Flow) != 8 || pm.Flow[6].Key != "winding" || pm.Flow[6].Status != generated.ProcessStageStatusError {
		t.Errorf("технологическая цепочка = %+v", pm.Flow)
	}
}

func TestInventory(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	manager := env.claimsFor(t, managerID)

	rec := env.do(t, manager, http.MethodPost, "/api/v1/inventory",
		`{"category":"finished_good","name":"Combed 40s","quantity":120,"unit":"kg","count":"40s","packageType":"Cone"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("создание: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var it generated.InventoryItem
	_ = json.Unmarshal(rec.Body.Bytes(), &it)
	if !strings.HasPrefix(it.Id, "FG-") || it.Status != "quality_check" {
		t.Errorf("позиция = %+v", it)
	}

	rec = env.do(t, manager, http.MethodGet, "/api/v1/inventory?category=finished_good", "")
	var list generated.InventoryListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	for _, item := range list.Items {
		if item.Category != generated.InventoryCategoryFinishedGood {
			t.Errorf("фильтр вернул %s", item.Category)
		}
	}
	if list.Total == 0 {
		t.Error("пустой список готовой пряжи")
	}

	rec = env.do(t, manager, http.MethodPost, "/api/v1/inventory", `{"category":"raw_material","name":"Cotton","quantity":-1,"unit":"kg"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("отрицательное количество: статус = %d", rec.Code)
	}
}

func TestQuality(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	employee := env.claimsFor(t, employeeID)

	rec := env.do(t, employee, http.MethodPost, "/api/v1/quality/tests",
		`{"batch":"B-2024-099","machine":"RF-01","twist":90,"evenness":85,"tensileStrength":92,"elongation":91,"hairiness":88}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("создание: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var qt generated.QualityTest
	_ = json.Unmarshal(rec.Body.Bytes(), &qt)
	if qt.Status != generated.QualityStatusWarning {
		t.Errorf("статус теста = %s, ожидался warning", qt.Status)
	}

	rec = env.do(t, employee, http.MethodGet, "/api/v1/quality/tests?search=B-2024-099", "")
	var list generated.QualityTestListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || list.Items[0].Id != qt.Id {
		t.Errorf("поиск = %+v", list)
	}

	rec = env.do(t, employee, http.MethodGet, "/api/v1/quality/metrics", "")
	var qm generated.QualityMetricsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &qm)
	if len(qm.Parameters) != 5 || len(qm.Series) == 0 {
		t.Errorf("показатели качества = %+v", qm)
	}
	traveller := false
	for _, rec := range qm.Recommendations {
		if rec.Key == "replaceTraveller" {
			traveller = true
			if rec.Machine != "Open-End Spinning 01" || rec.Impact != generated.RecommendationImpactHigh {
				t.Errorf("действие по ворсистости = %+v", rec)
			}
		}
	}
	if !traveller {
		t.Errorf("нет действия по ворсистости: %+v", qm.Recommendations)
	}
	alerted := false
	for _, a := range qm.Alerts {
		if a.Status == generated.QualityStatusPass {
			t.Errorf("тревога по пройденному тесту %s", a.Id)
		}
		if a.Id == qt.Id {
			alerted = true
		}
	}
	if !alerted {
		t.Error("новый тест со статусом warning должен попасть в тревоги")
	}
}

func TestUsers(t *testing.T) {
	env := setupEnv(t, guard.NullRoleAllow)
	admin := env.claimsFor(t, adminID)

	body := `{"email":"weaver@spinwise.local","password":"secret1","firstName":"Meena","lastName":"Iyer","phone":"9876543210","role":"employee","language":"tamil"}`
	rec := env.do(t, admin, http.MethodPost, "/api/v1/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("создание: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var u generated.User
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Role != generated.RoleEmployee || u.Language != generated.LanguageTamil {
		t.Errorf("пользователь = %+v", u)
	}

	rec = env.do(t, admin, http.MethodPost, "/api/v1/users", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("дубликат: статус = %d, ожидался 409", rec.Code)
	}

	rec = env.do(t, admin, http.MethodPut, "/api/v1/users/"+u.Id, `{"role":"manager","password":"newsecret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("обновление: статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Role != generated.RoleManager || u.FirstName != "Meena" {
		t.Errorf("после обновления = %+v", u)
	}

	rec = env.do(t, admin, http.MethodGet, "/api/v1/users?role=manager", "")
	var list generated.UserListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 2 {
		t.Errorf("менеджеров = %d, ожидалось 2", list.Total)
	}

	rec = env.do(t, admin, http.MethodGet, "/api/v1/users/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("несуществующий: статус = %d", rec.Code)
	}

	rec = env.do(t, admin, http.MethodPut, "/api/v1/users/missing", `{"firstName":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("обновление несуществующего: статус = %d", rec.Code)
	}
}
