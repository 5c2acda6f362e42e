// quality.go — лабораторный контроль качества пряжи.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// goodParameterThreshold — среднее значение параметра, с которого он «good».
const goodParameterThreshold = 90.0

// failThreshold — значение параметра ниже порога warning (см. model.ClassifyQuality).
const failThreshold = 84.0

// correctiveActions — действие для параметра со средним ниже goodParameterThreshold.
var correctiveActions = map[string]string{
	"evenness":        "adjustDraftingSettings",
	"hairiness":       "replaceTraveller",
	"twist":           "adjustDraftingSettings",
	"tensileStrength": "optimizeHumidity",
	"elongation":      "optimizeHumidity",
}

// parameterNames — параметры теста в порядке model.QualityTest.Parameters.
var parameterNames = []string{"twist", "evenness", "tensileStrength", "elongation", "hairiness"}

// CreateTestInput — данные нового теста (параметры в %).
type CreateTestInput struct {
	Batch           string  `validate:"required"`
	Machine         string  `validate:"required"`
	Twist           float64 `validate:"gte=0,lte=100"`
	Evenness        float64 `validate:"gte=0,lte=100"`
	TensileStrength float64 `validate:"gte=0,lte=100"`
	Elongation      float64 `validate:"gte=0,lte=100"`
	Hairiness       float64 `validate:"gte=0,lte=100"`
}

// QualityOverview — данные страницы качества.
type QualityOverview struct {
	Tests      []*model.QualityTest
	Parameters []model.QualityParameter
	// Overall — среднее по всем параметрам
	Overall float64
	Alerts  []*model.QualityTest
	Series  []model.SeriesPoint

	// Recommendations — корректирующие действия по слабым параметрам
	Recommendations []model.Recommendation
}

// QualityService — сервис контроля качества.
type QualityService struct {
	tests  repository.QualityRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewQualityService создаёт сервис контроля качества.
func NewQualityService(tests repository.QualityRepository, logger *slog.Logger) *QualityService {
	return &QualityService{
		tests:  tests,
		now:    time.Now,
		logger: logger.With(slog.String("component", "quality_service")),
	}
}

// Overview возвращает тесты по строке поиска, сводку параметров
// (по всем тестам), тревоги и недельный ряд.
func (s *QualityService) Overview(ctx context.Context, search string) (*QualityOverview, error) {
	all, err := s.tests.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("получение тестов качества: %w", err)
	}

	tests := all
	if strings.TrimSpace(search) != "" {
		if tests, err = s.List(ctx, search); err != nil {
			return nil, err
		}
	}

	params, overall := SummarizeParameters(all)
	return &QualityOverview{
		Tests:      tests,
		Parameters: params,
		Overall:    overall,
		Alerts:     Alerts(all),
		Series:     QualitySeries(),

		Recommendations: Recommendations(all),
	}, nil
}

// List возвращает тесты; search — поиск по ID, партии и машине.
func (s *QualityService) List(ctx context.Context, search string) ([]*model.QualityTest, error) {
	tests, err := s.tests.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("получение тестов качества: %w", err)
	}
	return tests, nil
}

// Create добавляет тест. Итог вычисляется по минимальному параметру.
func (s *QualityService) Create(ctx context.Context, in CreateTestInput) (*model.QualityTest, error) {
	in.Batch = strings.TrimSpace(in.Batch)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	t := &model.QualityTest{
		ID:              "TST-" + shortID(),
		TestedAt:        s.now(),
		Batch:           in.Batch,
		Machine:         in.Machine,
		Twist:           in.Twist,
		Evenness:        in.Evenness,
		TensileStrength: in.TensileStrength,
		Elongation:      in.Elongation,
		Hairiness:       in.Hairiness,
	}
	t.Status = model.ClassifyQuality(t.Parameters()...)

	if err := s.tests.Create(ctx, t); err != nil {
		return nil, mapRepoError(err, "создание теста качества")
	}

	s.logger.Info("Тест качества добавлен",
		slog.String("test_id", t.ID),
		slog.String("batch", t.Batch),
		slog.String("status", string(t.Status)),
	)
	return t, nil
}

// SummarizeParameters возвращает среднее по каждому параметру
// и общее среднее (округление до 0.1).
func SummarizeParameters(tests []*model.QualityTest) ([]model.QualityParameter, float64) {
	sums := make([]float64, len(parameterNames))
	for _, t := range tests {
		for i, v := range t.Parameters() {
			sums[i] += v
		}
	}

	params := make([]model.QualityParameter, len(parameterNames))
	var total float64
	for i, name := range parameterNames {
		avg := 0.0
		if len(tests) > 0 {
			avg = round1(sums[i] / float64(len(tests)))
		}
		status := "average"
		if avg >= goodParameterThreshold {
			status = "good"
		}
		params[i] = model.QualityParameter{Name: name, Value: avg, Status: status}
		total += avg
	}
	return params, round1(total / float64(len(parameterNames)))
}

// Alerts возвращает тесты с итогом warning или fail.
func Alerts(tests []*model.QualityTest) []*model.QualityTest {
	var alerts []*model.QualityTest
	for _, t := range tests {
		if t.Status == model.QualityWarning || t.Status == model.QualityFail {
			alerts = append(alerts, t)
		}
	}
	return alerts
}

// Recommendations возвращает корректирующие действия для параметров
// со средним ниже goodParameterThreshold, по одному на действие.
// Машина — та, где параметр хуже всего; эффект high, если там он ниже
// failThreshold.
func Recommendations(tests []*model.QualityTest) []model.Recommendation {
	if len(tests) == 0 {
		return nil
	}
	params, _ := SummarizeParameters(tests)

	var recs []model.Recommendation
	seen := make(map[string]bool)
	for i, p := range params {
		action := correctiveActions[p.Name]
		if p.Value >= goodParameterThreshold || seen[action] {
			continue
		}
		seen[action] = true

		worst := tests[0]
		for _, t := range tests[1:] {
			if t.Parameters()[i] < worst.Parameters()[i] {
				worst = t
			}
		}
		impact := model.ImpactMedium
		if worst.Parameters()[i] < failThreshold {
			impact = model.ImpactHigh
		}
		recs = append(recs, model.Recommendation{
			ID:      fmt.Sprintf("REC%03d", len(recs)+1),
			Key:     action,
			Impact:  impact,
			Machine: worst.Machine,
		})
	}
	return recs
}

// QualitySeries возвращает недельный ряд параметров качества.
func QualitySeries() []model.SeriesPoint {
	rows := []struct {
		day    string
		values [5]float64
	}{
		{"Mon", [5]float64{95.4, 93.8, 97.2, 91.5, 88.2}},
		{"Tue", [5]float64{96.1, 94.2, 97.8, 92.1, 89.0}},
		{"Wed", [5]float64{95.8, 94.5, 98.0, 92.3, 88.7}},
		{"Thu", [5]float64{96.3, 94.8, 98.1, 92.4, 88.5}},
		{"Fri", [5]float64{95.9, 94.6, 97.9, 92.2, 87.8}},
		{"Sat", [5]float64{95.6, 94.0, 97.5, 91.8, 87.3}},
		{"Sun", [5]float64{95.2, 93.5, 97.3, 91.6, 87.5}},
	}

	series := make([]model.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		values := make(map[string]float64, len(parameterNames))
		for i, name := range parameterNames {
			values[name] = r.values[i]
		}
		series = append(series, model.SeriesPoint{Label: r.day, Values: values})
	}
	return series
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
