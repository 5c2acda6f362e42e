// dashboard.go — сводка главной страницы.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/repository"
)

// recentOrdersLimit — число заказов в таблице главной страницы.
const recentOrdersLimit = 10

// Dashboard — данные главной страницы.
type Dashboard struct {
	Stats  []model.DashboardStat
	Orders []*model.Order
	Stock  []model.InventoryTotal
}

// DashboardService собирает сводку из нескольких репозиториев.
type DashboardService struct {
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	quality   repository.QualityRepository
	profiles  repository.ProfileRepository
	printer   *message.Printer
	logger    *slog.Logger
}

// NewDashboardService создаёт сервис главной страницы.
func NewDashboardService(
	orders repository.OrderRepository,
	inventory repository.InventoryRepository,
	quality repository.QualityRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		orders:    orders,
		inventory: inventory,
		quality:   quality,
		profiles:  profiles,
		printer:   message.NewPrinter(language.English),
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Load загружает заказы, итоги склада, тесты и профили параллельно.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	var (
		orders   []*model.Order
		stock    []model.InventoryTotal
		tests    []*model.QualityTest
		profiles []*model.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListRecent(gctx, recentOrdersLimit)
		if err != nil {
			return fmt.Errorf("заказы: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stock, err = s.inventory.Totals(gctx)
		if err != nil {
			return fmt.Errorf("итоги склада: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tests, err = s.quality.List(gctx, "")
		if err != nil {
			return fmt.Errorf("тесты качества: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profiles, err = s.profiles.List(gctx, nil)
		if err != nil {
			return fmt.Errorf("профили: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Ошибка загрузки сводки", slog.String("error", err.Error()))
		return nil, fmt.Errorf("загрузка сводки: %w", err)
	}

	return &Dashboard{
		Stats:  s.stats(orders, stock, tests, len(profiles)),
		Orders: orders,
		Stock:  stock,
	}, nil
}

// stats строит шесть карточек главной страницы.
func (s *DashboardService) stats(orders []*model.Order, stock []model.InventoryTotal, tests []*model.QualityTest, staff int) []model.DashboardStat {
	var produced float64
	for _, p := range ProductionSeries() {
		produced += p.Values["production"]
	}

	var raw float64
	for _, t := range stock {
		if t.Category == model.CategoryRawMaterial {
			raw = t.Quantity
		}
	}

	_, quality := SummarizeParameters(tests)

	pending := 0
	for _, o := range orders {
		if o.Status != "Completed" {
			pending++
		}
	}

	return []model.DashboardStat{
		{Key: "dailyProduction", Value: s.printer.Sprintf("%d kg", int(produced)), Trend: "8%", Positive: true},
		{Key: "rawMaterials", Value: s.printer.Sprintf("%.1f tons", raw), Trend: "5%", Positive: false},
		{Key: "qualityRating", Value: s.printer.Sprintf("%.1f%%", quality), Trend: "2.1%", Positive: true},
		{Key: "monthlyRevenue", Value: "₹" + s.printer.Sprintf("%d", 3542800), Trend: "12%", Positive: true},
		{Key: "activeStaff", Value: s.printer.Sprintf("%d", staff)},
		{Key: "pendingDeliveries", Value: s.printer.Sprintf("%d", pending)},
	}
}
