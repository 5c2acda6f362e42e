// inventory.go — склад: сырьё, незавершённое производство, готовая пряжа.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// CreateItemInput — данные новой позиции склада.
type CreateItemInput struct {
	Category    string  `validate:"required,category"`
	Name        string  `validate:"required"`
	BatchNumber string
	Quantity    float64 `validate:"gt=0"`
	Unit        string  `validate:"required"`
	Location    string
	Stage       string
	Machine     string
	Count       string
	PackageType string
}

// categoryPrefix — префикс ID позиции по разделу.
var categoryPrefix = map[model.InventoryCategory]string{
	model.CategoryRawMaterial:    "RM-",
	model.CategoryWorkInProgress: "WIP-",
	model.CategoryFinishedGood:   "FG-",
}

// defaultItemStatus — состояние новой позиции по разделу.
var defaultItemStatus = map[model.InventoryCategory]string{
	model.CategoryRawMaterial:    "in_stock",
	model.CategoryWorkInProgress: "in_progress",
	model.CategoryFinishedGood:   "quality_check",
}

// InventoryService — сервис склада.
type InventoryService struct {
	items  repository.InventoryRepository
	logger *slog.Logger
}

// NewInventoryService создаёт сервис склада.
func NewInventoryService(items repository.InventoryRepository, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		items:  items,
		logger: logger.With(slog.String("component", "inventory_service")),
	}
}

// List возвращает позиции раздела (пустой — все разделы).
func (s *InventoryService) List(ctx context.Context, category string) ([]*model.InventoryItem, error) {
	if category != "" && !model.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: неизвестный раздел %q", ErrValidation, category)
	}
	items, err := s.items.List(ctx, model.InventoryCategory(category))
	if err != nil {
		return nil, fmt.Errorf("получение позиций склада: %w", err)
	}
	return items, nil
}

// Analytics возвращает итоги по разделам.
func (s *InventoryService) Analytics(ctx context.Context) ([]model.InventoryTotal, error) {
	totals, err := s.items.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("итоги склада: %w", err)
	}
	return totals, nil
}

// Create добавляет позицию склада.
func (s *InventoryService) Create(ctx context.Context, in CreateItemInput) (*model.InventoryItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	category := model.InventoryCategory(in.Category)
	item := &model.InventoryItem{
		ID:          categoryPrefix[category] + shortID(),
		Category:    category,
		Name:        in.Name,
		BatchNumber: in.BatchNumber,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		Location:    in.Location,
		Stage:       in.Stage,
		Machine:     in.Machine,
		Count:       in.Count,
		PackageType: in.PackageType,
		Status:      defaultItemStatus[category],
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, mapRepoError(err, "создание позиции склада")
	}

	s.logger.Info("Позиция склада добавлена",
		slog.String("item_id", item.ID),
		slog.String("category", in.Category),
	)
	return item, nil
}
