// production.go — оборудование цеха и производственные показатели.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// CreateMachineInput — данные нового оборудования.
type CreateMachineInput struct {
	Name         string `validate:"required,min=2"`
	Type         string `validate:"required"`
	Area         string `validate:"required"`
	Model        string
	Manufacturer string
	Description  string
	// InstallationDate — YYYY-MM-DD
	InstallationDate string `validate:"omitempty,datetime=2006-01-02"`
	OutputMetric     string `validate:"required"`
	OutputUnit       string `validate:"required"`
}

// ProductionOverview — данные страницы производства.
type ProductionOverview struct {
	Machines     []*model.Machine
	StatusCounts model.StatusCount
	Series       []model.SeriesPoint
	Flow         []model.ProcessStage
}

// ProductionService — сервис производства.
type ProductionService struct {
	machines repository.MachineRepository
	logger   *slog.Logger
}

// NewProductionService создаёт сервис производства.
func NewProductionService(machines repository.MachineRepository, logger *slog.Logger) *ProductionService {
	return &ProductionService{
		machines: machines,
		logger:   logger.With(slog.String("component", "production_service")),
	}
}

// Overview возвращает оборудование по фильтру, счётчики состояний
// и суточный ряд показателей.
func (s *ProductionService) Overview(ctx context.Context, filter model.MachineFilter) (*ProductionOverview, error) {
	machines, err := s.ListMachines(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.machines.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт оборудования: %w", err)
	}
	return &ProductionOverview{
		Machines:     machines,
		StatusCounts: counts,
		Series:       ProductionSeries(),
		Flow:         ProcessFlow(),
	}, nil
}

// ListMachines возвращает оборудование по фильтру.
func (s *ProductionService) ListMachines(ctx context.Context, filter model.MachineFilter) ([]*model.Machine, error) {
	if filter.Status != "" && !isValidMachineStatus(filter.Status) {
		return nil, fmt.Errorf("%w: неизвестное состояние %q", ErrValidation, filter.Status)
	}
	machines, err := s.machines.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение оборудования: %w", err)
	}
	return machines, nil
}

// CreateMachine добавляет оборудование. Новое оборудование
// простаивает с нулевой эффективностью.
func (s *ProductionService) CreateMachine(ctx context.Context, in CreateMachineInput) (*model.Machine, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	m := &model.Machine{
		ID:           "MCH-" + shortID(),
		Name:         in.Name,
		Type:         in.Type,
		Area:         in.Area,
		Status:       model.MachineIdle,
		Efficiency:   0,
		Model:        in.Model,
		Manufacturer: in.Manufacturer,
		Description:  in.Description,
		OutputMetric: in.OutputMetric,
		OutputUnit:   in.OutputUnit,
	}
	if in.InstallationDate != "" {
		d, _ := time.Parse(time.DateOnly, in.InstallationDate)
		m.InstallationDate = &d
	}

	if err := s.machines.Create(ctx, m); err != nil {
		return nil, mapRepoError(err, "создание оборудования")
	}

	s.logger.Info("Оборудование добавлено",
		slog.String("machine_id", m.ID),
		slog.String("area", m.Area),
	)
	return m, nil
}

// ProductionSeries возвращает суточный ряд с шагом 3 часа:
// выработка (кг), качество (%) и эффективность (%).
func ProductionSeries() []model.SeriesPoint {
	rows := []struct {
		label                           string
		production, quality, efficiency float64
	}{
		{"00:00", 210, 96, 88},
		{"03:00", 180, 95, 85},
		{"06:00", 200, 97, 89},
		{"09:00", 240, 98, 92},
		{"12:00", 250, 96, 91},
		{"15:00", 230, 95, 88},
		{"18:00", 220, 97, 90},
		{"21:00", 200, 98, 92},
	}

	series := make([]model.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		series = append(series, model.SeriesPoint{
			Label: r.label,
			Values: map[string]float64{
				"production": r.production,
				"quality":    r.quality,
				"efficiency": r.efficiency,
			},
		})
	}
	return series
}

// ProcessFlow возвращает технологическую цепочку цеха от разрыхления
// кип до лабораторного контроля.
func ProcessFlow() []model.ProcessStage {
	return []model.ProcessStage{
		{Number: 1, Key: "baleOpening", Machines: []string{"Bale Opener", "Bale Feeder", "Blower"}, Status: model.StageActive, Current: 450, Target: 500},
		{Number: 2, Key: "carding", Machines: []string{"Carding Machine 1", "Carding Machine 2"}, Status: model.StageActive, Current: 420, Target: 450},
		{Number: 3, Key: "drawing", Machines: []string{"Drawing Frame 1", "Drawing Frame 2"}, Status: model.StageActive, Current: 410, Target: 430},
		{Number: 4, Key: "combing", Machines: []string{"Combing Machine"}, Status: model.StageActive, Current: 300, Target: 320},
		{Number: 5, Key: "roving", Machines: []string{"Roving Frame 1", "Roving Frame 2"}, Status: model.StageWarning, Current: 380, Target: 430},
		{Number: 6, Key: "spinning", Machines: []string{"Ring Spinning 1", "Ring Spinning 2", "Open-End Spinning"}, Status: model.StageActive, Current: 290, Target: 300},
		{Number: 7, Key: "winding", Machines: []string{"Winding Machine 1", "Winding Machine 2"}, Status: model.StageError, Current: 0, Target: 280},
		{Number: 8, Key: "qualityControl", Machines: []string{"Quality Control Unit", "Testing Lab"}, Status: model.StageActive, Current: 270, Target: 280},
	}
}

func isValidMachineStatus(s model.MachineStatus) bool {
	switch s {
	case model.MachineRunning, model.MachineIdle, model.MachineWarning, model.MachineError:
		return true
	}
	return false
}

// shortID возвращает 8 шестнадцатеричных символов UUID в верхнем регистре.
func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
