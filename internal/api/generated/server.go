// Пакет generated — типы и маршрутизация JSON API по контракту openapi.yaml.
// Повторяет форму oapi-codegen chi-server: ServerInterface, обёртка
// с разбором параметров через oapi-codegen/runtime и HandlerWithOptions.
// При изменении openapi.yaml типы и маршруты обновляются вручную.
package generated

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// --- Перечисления ---

// Role — роль пользователя.
type Role string

// Значения Role.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Language — язык интерфейса.
type Language string

// Значения Language.
const (
	LanguageEnglish Language = "english"
	LanguageTamil   Language = "tamil"
	LanguageTelugu  Language = "telugu"
	LanguageHindi   Language = "hindi"
	LanguageKannada Language = "kannada"
)

// MachineStatus — состояние оборудования.
type MachineStatus string

// Значения MachineStatus.
const (
	MachineStatusRunning MachineStatus = "running"
	MachineStatusIdle    MachineStatus = "idle"
	MachineStatusWarning MachineStatus = "warning"
	MachineStatusError   MachineStatus = "error"
)

// InventoryCategory — раздел склада.
type InventoryCategory string

// Значения InventoryCategory.
const (
	InventoryCategoryRawMaterial    InventoryCategory = "raw_material"
	InventoryCategoryWorkInProgress InventoryCategory = "work_in_progress"
	InventoryCategoryFinishedGood   InventoryCategory = "finished_good"
)

// QualityStatus — итог теста качества.
type QualityStatus string

// Значения QualityStatus.
const (
	QualityStatusPass    QualityStatus = "pass"
	QualityStatusWarning QualityStatus = "warning"
	QualityStatusFail    QualityStatus = "fail"
)

// ProfileState — состояние профиля текущего пользователя.
type ProfileState string

// Значения ProfileState.
const (
	ProfileStateResolved ProfileState = "resolved"
	ProfileStateNotFound ProfileState = "not_found"
	ProfileStateFailed   ProfileState = "failed"
)

// QualityParameterStatus — оценка параметра качества.
type QualityParameterStatus string

// Значения QualityParameterStatus.
const (
	QualityParameterStatusGood    QualityParameterStatus = "good"
	QualityParameterStatusAverage QualityParameterStatus = "average"
)

// ProcessStageStatus — состояние технологического перехода.
type ProcessStageStatus string

// Значения ProcessStageStatus.
const (
	ProcessStageStatusActive  ProcessStageStatus = "active"
	ProcessStageStatusWarning ProcessStageStatus = "warning"
	ProcessStageStatusError   ProcessStageStatus = "error"
)

// RecommendationImpact — ожидаемый эффект корректирующего действия.
type RecommendationImpact string

// Значения RecommendationImpact.
const (
	RecommendationImpactHigh   RecommendationImpact = "high"
	RecommendationImpactMedium RecommendationImpact = "medium"
	RecommendationImpactLow    RecommendationImpact = "low"
)

// --- Схемы ---

// Error — тело ответа об ошибке.
type Error struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInRequest defines model for SignInRequest.
type SignInRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

// RefreshRequest defines model for RefreshRequest.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse defines model for TokenResponse.
type TokenResponse struct {
	UserId       string    `json:"userId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// MeResponse defines model for MeResponse.
type MeResponse struct {
	UserId       string       `json:"userId"`
	Email        *string      `json:"email,omitempty"`
	ProfileState ProfileState `json:"profileState"`
	Profile      *User        `json:"profile,omitempty"`
}

// User — профиль пользователя.
type User struct {
	Id        string              `json:"id"`
	Email     openapi_types.Email `json:"email"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Phone     *string             `json:"phone,omitempty"`
	Role      Role                `json:"role"`
	Language  Language            `json:"language"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// UserListResponse defines model for UserListResponse.
type UserListResponse struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
}

// CreateUserRequest defines model for CreateUserRequest.
type CreateUserRequest struct {
	Email     openapi_types.Email `json:"email"`
	Password  string              `json:"password"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Phone     *string             `json:"phone,omitempty"`
	Role      Role                `json:"role"`
	Language  Language            `json:"language"`
}

// UpdateUserRequest — частичное обновление профиля (отсутствующее поле не меняется).
type UpdateUserRequest struct {
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Role      *Role     `json:"role,omitempty"`
	Language  *Language `json:"language,omitempty"`
	Password  *string   `json:"password,omitempty"`
}

// DashboardStat defines model for DashboardStat.
type DashboardStat struct {
	Key      string  `json:"key"`
	Value    string  `json:"value"`
	Trend    *string `json:"trend,omitempty"`
	Positive bool    `json:"positive"`
}

// Order defines model for Order.
type Order struct {
	Id        string             `json:"id"`
	Customer  string             `json:"customer"`
	Product   string             `json:"product"`
	Quantity  string             `json:"quantity"`
	Status    string             `json:"status"`
	OrderedAt openapi_types.Date `json:"orderedAt"`
}

// InventoryTotal defines model for InventoryTotal.
type InventoryTotal struct {
	Category InventoryCategory `json:"category"`
	Items    int               `json:"items"`
	Quantity float64           `json:"quantity"`
}

// DashboardResponse defines model for DashboardResponse.
type DashboardResponse struct {
	Stats  []DashboardStat  `json:"stats"`
	Orders []Order          `json:"orders"`
	Stock  []InventoryTotal `json:"stock"`
}

// Machine defines model for Machine.
type Machine struct {
	Id               string              `json:"id"`
	Name             string              `json:"name"`
	Type             string              `json:"type"`
	Area             string              `json:"area"`
	Status           MachineStatus       `json:"status"`
	Efficiency       int                 `json:"efficiency"`
	Model            *string             `json:"model,omitempty"`
	Manufacturer     *string             `json:"manufacturer,omitempty"`
	Description      *string             `json:"description,omitempty"`
	InstallationDate *openapi_types.Date `json:"installationDate,omitempty"`
	OutputMetric     *string             `json:"outputMetric,omitempty"`
	OutputUnit       *string             `json:"outputUnit,omitempty"`
	LastMaintenance  *openapi_types.Date `json:"lastMaintenance,omitempty"`
	NextMaintenance  *openapi_types.Date `json:"nextMaintenance,omitempty"`
}

// MachineListResponse defines model for MachineListResponse.
type MachineListResponse struct {
	Items []Machine `json:"items"`
	Total int       `json:"total"`
}

// CreateMachineRequest defines model for CreateMachineRequest.
type CreateMachineRequest struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Area             string  `json:"area"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Description      *string `json:"description,omitempty"`
	InstallationDate *string `json:"installationDate,omitempty"`
	OutputMetric     string  `json:"outputMetric"`
	OutputUnit       string  `json:"outputUnit"`
}

// SeriesPoint defines model for SeriesPoint.
type SeriesPoint struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
}

// ProcessStage defines model for ProcessStage.
type ProcessStage struct {
	Number   int                `json:"number"`
	Key      string             `json:"key"`
	Machines []string           `json:"machines"`
	Status   ProcessStageStatus `json:"status"`
	// Current — текущая производительность, кг/ч
	Current float64 `json:"current"`
	// Target — плановая производительность, кг/ч
	Target float64 `json:"target"`
}

// ProductionMetricsResponse defines model for ProductionMetricsResponse.
type ProductionMetricsResponse struct {
	Series       []SeriesPoint  `json:"series"`
	StatusCounts map[string]int `json:"statusCounts"`
	Flow         []ProcessStage `json:"flow"`
}

// InventoryItem defines model for InventoryItem.
type InventoryItem struct {
	Id          string            `json:"id"`
	Category    InventoryCategory `json:"category"`
	Name        string            `json:"name"`
	BatchNumber *string           `json:"batchNumber,omitempty"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit"`
	Location    *string           `json:"location,omitempty"`
	Stage       *string           `json:"stage,omitempty"`
	Machine     *string           `json:"machine,omitempty"`
	Count       *string           `json:"count,omitempty"`
	PackageType *string           `json:"packageType,omitempty"`
	Status      string            `json:"status"`
}

// InventoryListResponse defines model for InventoryListResponse.
type InventoryListResponse struct {
	Items []InventoryItem `json:"items"`
	Total int             `json:"total"`
}

// CreateInventoryItemRequest defines model for CreateInventoryItemRequest.
type CreateInventoryItemRequest struct {
	Category    InventoryCategory `json:"category"`
	Name        string            `json:"name"`
	BatchNumber *string           `json:"batchNumber,omitempty"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit"`
	Location    *string           `json:"location,omitempty"`
	Stage       *string           `json:"stage,omitempty"`
	Machine     *string           `json:"machine,omitempty"`
	Count       *string           `json:"count,omitempty"`
	PackageType *string           `json:"packageType,omitempty"`
}

// InventoryAnalyticsResponse defines model for InventoryAnalyticsResponse.
type InventoryAnalyticsResponse struct {
	Totals []InventoryTotal `json:"totals"`
}

// QualityTest defines model for QualityTest.
type QualityTest struct {
	Id              string        `json:"id"`
	TestedAt        time.Time     `json:"testedAt"`
	Batch           string        `json:"batch"`
	Machine         string        `json:"machine"`
	Twist           float64       `json:"twist"`
	Evenness        float64       `json:"evenness"`
	TensileStrength float64       `json:"tensileStrength"`
	Elongation      float64       `json:"elongation"`
	Hairiness       float64       `json:"hairiness"`
	Status          QualityStatus `json:"status"`
}

// QualityTestListResponse defines model for QualityTestListResponse.
type QualityTestListResponse struct {
	Items []QualityTest `json:"items"`
	Total int           `json:"total"`
}

// CreateQualityTestRequest defines model for CreateQualityTestRequest.
type CreateQualityTestRequest struct {
	Batch           string  `json:"batch"`
	Machine         string  `json:"machine"`
	Twist           float64 `json:"twist"`
	Evenness        float64 `json:"evenness"`
	TensileStrength float64 `json:"tensileStrength"`
	Elongation      float64 `json:"elongation"`
	Hairiness       float64 `json:"hairiness"`
}

// QualityParameter defines model for QualityParameter.
type QualityParameter struct {
	Name   string                 `json:"name"`
	Value  float64                `json:"value"`
	Status QualityParameterStatus `json:"status"`
}

// Recommendation defines model for Recommendation.
type Recommendation struct {
	Id      string               `json:"id"`
	Key     string               `json:"key"`
	Impact  RecommendationImpact `json:"impact"`
	Machine string               `json:"machine"`
}

// QualityMetricsResponse defines model for QualityMetricsResponse.
type QualityMetricsResponse struct {
	Parameters      []QualityParameter `json:"parameters"`
	Overall         float64            `json:"overall"`
	Alerts          []QualityTest      `json:"alerts"`
	Series          []SeriesPoint      `json:"series"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// --- Параметры ---

// UserId — ID пользователя в пути.
type UserId = string

// ListMachinesParams defines parameters for ListMachines.
type ListMachinesParams struct {
	Area   *string        `form:"area,omitempty" json:"area,omitempty"`
	Status *MachineStatus `form:"status,omitempty" json:"status,omitempty"`
}

// ListInventoryParams defines parameters for ListInventory.
type ListInventoryParams struct {
	Category *InventoryCategory `form:"category,omitempty" json:"category,omitempty"`
}

// ListQualityTestsParams defines parameters for ListQualityTests.
type ListQualityTestsParams struct {
	Search *string `form:"search,omitempty" json:"search,omitempty"`
}

// ListUsersParams defines parameters for ListUsers.
type ListUsersParams struct {
	Role *Role `form:"role,omitempty" json:"role,omitempty"`
}

// --- Сервер ---

// ServerInterface — обработчики операций контракта.
type ServerInterface interface {
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/auth/sign-in)
	SignIn(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/auth/refresh)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/auth/me)
	GetMe(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/dashboard)
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/machines)
	ListMachines(w http.ResponseWriter, r *http.Request, params ListMachinesParams)
	// (POST /api/v1/machines)
	CreateMachine(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/production/metrics)
	GetProductionMetrics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/inventory)
	ListInventory(w http.ResponseWriter, r *http.Request, params ListInventoryParams)
	// (POST /api/v1/inventory)
	CreateInventoryItem(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/inventory/analytics)
	GetInventoryAnalytics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/quality/tests)
	ListQualityTests(w http.ResponseWriter, r *http.Request, params ListQualityTestsParams)
	// (POST /api/v1/quality/tests)
	CreateQualityTest(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/quality/metrics)
	GetQualityMetrics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/users)
	ListUsers(w http.ResponseWriter, r *http.Request, params ListUsersParams)
	// (POST /api/v1/users)
	CreateUser(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/users/{id})
	GetUser(w http.ResponseWriter, r *http.Request, id UserId)
	// (PUT /api/v1/users/{id})
	UpdateUser(w http.ResponseWriter, r *http.Request, id UserId)
}

// MiddlewareFunc — middleware отдельной операции.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper разбирает параметры запроса и вызывает ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError — параметр запроса не соответствует схеме.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("некорректный формат параметра %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// serve применяет middleware операции и вызывает обработчик.
func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// bindQuery разбирает необязательный query-параметр формы form/explode.
func (siw *ServerInterfaceWrapper) bindQuery(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// bindUserID разбирает обязательный path-параметр id.
func (siw *ServerInterfaceWrapper) bindUserID(w http.ResponseWriter, r *http.Request) (UserId, bool) {
	var id UserId
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// HealthLive operation middleware
func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthLive)
}

// HealthReady operation middleware
func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthReady)
}

// GetMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetMetrics)
}

// SignIn operation middleware
func (siw *ServerInterfaceWrapper) SignIn(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.SignIn)
}

// RefreshToken operation middleware
func (siw *ServerInterfaceWrapper) RefreshToken(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.RefreshToken)
}

// GetMe operation middleware
func (siw *ServerInterfaceWrapper) GetMe(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetMe)
}

// GetDashboard operation middleware
func (siw *ServerInterfaceWrapper) GetDashboard(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetDashboard)
}

// ListMachines operation middleware
func (siw *ServerInterfaceWrapper) ListMachines(w http.ResponseWriter, r *http.Request) {
	var params ListMachinesParams
	if !siw.bindQuery(w, r, "area", &params.Area) || !siw.bindQuery(w, r, "status", &params.Status) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListMachines(w, r, params)
	})
}

// CreateMachine operation middleware
func (siw *ServerInterfaceWrapper) CreateMachine(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateMachine)
}

// GetProductionMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetProductionMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetProductionMetrics)
}

// ListInventory operation middleware
func (siw *ServerInterfaceWrapper) ListInventory(w http.ResponseWriter, r *http.Request) {
	var params ListInventoryParams
	if !siw.bindQuery(w, r, "category", &params.Category) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListInventory(w, r, params)
	})
}

// CreateInventoryItem operation middleware
func (siw *ServerInterfaceWrapper) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateInventoryItem)
}

// GetInventoryAnalytics operation middleware
func (siw *ServerInterfaceWrapper) GetInventoryAnalytics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetInventoryAnalytics)
}

// ListQualityTests operation middleware
func (siw *ServerInterfaceWrapper) ListQualityTests(w http.ResponseWriter, r *http.Request) {
	var params ListQualityTestsParams
	if !siw.bindQuery(w, r, "search", &params.Search) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListQualityTests(w, r, params)
	})
}

// CreateQualityTest operation middleware
func (siw *ServerInterfaceWrapper) CreateQualityTest(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateQualityTest)
}

// GetQualityMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetQualityMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetQualityMetrics)
}

// ListUsers operation middleware
func (siw *ServerInterfaceWrapper) ListUsers(w http.ResponseWriter, r *http.Request) {
	var params ListUsersParams
	if !siw.bindQuery(w, r, "role", &params.Role) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListUsers(w, r, params)
	})
}

// CreateUser operation middleware
func (siw *ServerInterfaceWrapper) CreateUser(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateUser)
}

// GetUser operation middleware
func (siw *ServerInterfaceWrapper) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindUserID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUser(w, r, id)
	})
}

// UpdateUser operation middleware
func (siw *ServerInterfaceWrapper) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindUserID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateUser(w, r, id)
	})
}

// ChiServerOptions — параметры регистрации маршрутов.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler создаёт http.Handler с маршрутами контракта.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerFromMux регистрирует маршруты контракта на существующем роутере.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions регистрирует маршруты контракта с указанными параметрами.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}
	base := options.BaseURL

	r.Group(func(r chi.Router) {
		r.Get(base+"/health/live", wrapper.HealthLive)
		r.Get(base+"/health/ready", wrapper.HealthReady)
		r.Get(base+"/metrics", wrapper.GetMetrics)

		r.Post(base+"/api/v1/auth/sign-in", wrapper.SignIn)
		r.Post(base+"/api/v1/auth/refresh", wrapper.RefreshToken)
		r.Get(base+"/api/v1/auth/me", wrapper.GetMe)

		r.Get(base+"/api/v1/dashboard", wrapper.GetDashboard)

		r.Get(base+"/api/v1/machines", wrapper.ListMachines)
		r.Post(base+"/api/v1/machines", wrapper.CreateMachine)
		r.Get(base+"/api/v1/production/metrics", wrapper.GetProductionMetrics)

		r.Get(base+"/api/v1/inventory", wrapper.ListInventory)
		r.Post(base+"/api/v1/inventory", wrapper.CreateInventoryItem)
		r.Get(base+"/api/v1/inventory/analytics", wrapper.GetInventoryAnalytics)

		r.Get(base+"/api/v1/quality/tests", wrapper.ListQualityTests)
		r.Post(base+"/api/v1/quality/tests", wrapper.CreateQualityTest)
		r.Get(base+"/api/v1/quality/metrics", wrapper.GetQualityMetrics)

		r.Get(base+"/api/v1/users", wrapper.ListUsers)
		r.Post(base+"/api/v1/users", wrapper.CreateUser)
		r.Get(base+"/api/v1/users/{id}", wrapper.GetUser)
		r.Put(base+"/api/v1/users/{id}", wrapper.UpdateUser)
	})

	return r
}
