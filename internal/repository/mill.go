package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// MachineRepository — оборудование цеха.
type MachineRepository interface {
	// List возвращает оборудование по фильтру, упорядоченное по ID.
	List(ctx context.Context, filter model.MachineFilter) ([]*model.Machine, error)
	// Create добавляет оборудование.
	Create(ctx context.Context, m *model.Machine) error
	// CountByStatus возвращает количество оборудования в каждом состоянии.
	CountByStatus(ctx context.Context) (model.StatusCount, error)
}

// InventoryRepository — позиции склада.
type InventoryRepository interface {
	// List возвращает позиции раздела (пустой category — все разделы).
	List(ctx context.Context, category model.InventoryCategory) ([]*model.InventoryItem, error)
	// Create добавляет позицию.
	Create(ctx context.Context, item *model.InventoryItem) error
	// Totals возвращает итоги по разделам.
	Totals(ctx context.Context) ([]model.InventoryTotal, error)
}

// QualityRepository — лабораторные тесты пряжи.
type QualityRepository interface {
	// List возвращает тесты (новые первыми). search ищет
	// без учёта регистра по ID, партии и машине.
	List(ctx context.Context, search string) ([]*model.QualityTest, error)
	// Create добавляет тест.
	Create(ctx context.Context, t *model.QualityTest) error
}

// OrderRepository — заказы клиентов.
type OrderRepository interface {
	// ListRecent возвращает последние limit заказов.
	ListRecent(ctx context.Context, limit int) ([]*model.Order, error)
}

// --- Machines ---

type machineRepo struct {
	db DBTX
}

// NewMachineRepository создаёт репозиторий оборудования.
func NewMachineRepository(db DBTX) MachineRepository {
	return &machineRepo{db: db}
}

const machineColumns = `id, name, type, area, status, efficiency, model, manufacturer, description,
	installation_date, output_metric, output_unit, last_maintenance, next_maintenance, created_at`

func (r *machineRepo) List(ctx context.Context, filter model.MachineFilter) ([]*model.Machine, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM machines
		WHERE ($1 = '' OR area = $1) AND ($2 = '' OR status = $2)
		ORDER BY id`, machineColumns)

	rows, err := r.db.Query(ctx, query, filter.Area, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	var result []*model.Machine
	for rows.Next() {
		m := &model.Machine{}
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Type, &m.Area, &m.Status, &m.Efficiency,
			&m.Model, &m.Manufacturer, &m.Description, &m.InstallationDate,
			&m.OutputMetric, &m.OutputUnit, &m.LastMaintenance, &m.NextMaintenance, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *machineRepo) Create(ctx context.Context, m *model.Machine) error {
	query := `
		INSERT INTO machines (id, name, type, area, status, efficiency, model, manufacturer,
			description, installation_date, output_metric, output_unit, last_maintenance, next_maintenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.Name, m.Type, m.Area, m.Status, m.Efficiency, m.Model, m.Manufacturer,
		m.Description, m.InstallationDate, m.OutputMetric, m.OutputUnit, m.LastMaintenance, m.NextMaintenance,
	).Scan(&m.CreatedAt)
	return pgError(err, "ошибка создания оборудования")
}

func (r *machineRepo) CountByStatus(ctx context.Context) (model.StatusCount, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM machines GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта оборудования: %w", err)
	}
	defer rows.Close()

	counts := model.StatusCount{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счётчика: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// --- Inventory ---

type inventoryRepo struct {
	db DBTX
}

// NewInventoryRepository создаёт репозиторий склада.
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepo{db: db}
}

const inventoryColumns = `id, category, name, batch_number, quantity, unit, location, stage, machine,
	count, package_type, status, updated_at`

func (r *inventoryRepo) List(ctx context.Context, category model.InventoryCategory) ([]*model.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		WHERE ($1 = '' OR category = $1)
		ORDER BY category, id`, inventoryColumns)

	rows, err := r.db.Query(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения позиций склада: %w", err)
	}
	defer rows.Close()

	var result []*model.InventoryItem
	for rows.Next() {
		it := &model.InventoryItem{}
		if err := rows.Scan(
			&it.ID, &it.Category, &it.Name, &it.BatchNumber, &it.Quantity, &it.Unit,
			&it.Location, &it.Stage, &it.Machine, &it.Count, &it.PackageType, &it.Status, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования позиции склада: %w", err)
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (r *inventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, category, name, batch_number, quantity, unit, location,
			stage, machine, count, package_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		it.ID, it.Category, it.Name, it.BatchNumber, it.Quantity, it.Unit, it.Location,
		it.Stage, it.Machine, it.Count, it.PackageType, it.Status,
	).Scan(&it.UpdatedAt)
	return pgError(err, "ошибка создания позиции склада")
}

func (r *inventoryRepo) Totals(ctx context.Context) ([]model.InventoryTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM inventory_items
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта итогов склада: %w", err)
	}
	defer rows.Close()

	var result []model.InventoryTotal
	for rows.Next() {
		var t model.InventoryTotal
		if err := rows.Scan(&t.Category, &t.Items, &t.Quantity); err != nil {
			return nil, fmt.Errorf("ошибка сканирования итога склада: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// --- Quality ---

type qualityRepo struct {
	db DBTX
}

// NewQualityRepository создаёт репозиторий тестов качества.
func NewQualityRepository(db DBTX) QualityRepository {
	return &qualityRepo{db: db}
}

const qualityColumns = `id, tested_at, batch, machine, twist, evenness, tensile_strength, elongation, hairiness, status`

func (r *qualityRepo) List(ctx context.Context, search string) ([]*model.QualityTest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM quality_tests
		WHERE $1 = '' OR id ILIKE $2 OR batch ILIKE $2 OR machine ILIKE $2
		ORDER BY tested_at DESC, id DESC`, qualityColumns)

	search = strings.TrimSpace(search)
	rows, err := r.db.Query(ctx, query, search, "%"+escapeLike(search)+"%")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тестов качества: %w", err)
	}
	defer rows.Close()

	var result []*model.QualityTest
	for rows.Next() {
		t := &model.QualityTest{}
		if err := rows.Scan(
			&t.ID, &t.TestedAt, &t.Batch, &t.Machine, &t.Twist, &t.Evenness,
			&t.TensileStrength, &t.Elongation, &t.Hairiness, &t.Status,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования теста качества: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *qualityRepo) Create(ctx context.Context, t *model.QualityTest) error {
	query := `
		INSERT INTO quality_tests (id, tested_at, batch, machine, twist, evenness,
			tensile_strength, elongation, hairiness, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.TestedAt, t.Batch, t.Machine, t.Twist, t.Evenness,
		t.TensileStrength, t.Elongation, t.Hairiness, t.Status,
	)
	return pgError(err, "ошибка создания теста качества")
}

// escapeLike экранирует спецсимволы LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// --- Orders ---

type orderRepo struct {
	db DBTX
}

// NewOrderRepository создаёт репозиторий заказов.
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*model.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer, product, quantity, status, ordered_at
		FROM orders
		ORDER BY ordered_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заказов: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Order, error) {
		o := &model.Order{}
		err := row.Scan(&o.ID, &o.Customer, &o.Product, &o.Quantity, &o.Status, &o.OrderedAt)
		return o, err
	})
}
