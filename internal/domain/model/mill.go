package model

import "time"

// MachineStatus — состояние оборудования.
type MachineStatus string

// Состояния оборудования.
const (
	MachineRunning MachineStatus = "running"
	MachineIdle    MachineStatus = "idle"
	MachineWarning MachineStatus = "warning"
	MachineError   MachineStatus = "error"
)

// Machine — единица оборудования прядильного цеха.
type Machine struct {
	ID               string
	Name             string
	Type             string
	Area             string
	Status           MachineStatus
	Efficiency       int
	Model            string
	Manufacturer     string
	Description      string
	InstallationDate *time.Time
	OutputMetric     string
	OutputUnit       string
	LastMaintenance  *time.Time
	NextMaintenance  *time.Time
	CreatedAt        time.Time
}

// MachineFilter — фильтр списка оборудования (пустые поля не фильтруют).
type MachineFilter struct {
	Area   string
	Status MachineStatus
}

// InventoryCategory — раздел склада.
type InventoryCategory string

// Разделы склада.
const (
	CategoryRawMaterial    InventoryCategory = "raw_material"
	CategoryWorkInProgress InventoryCategory = "work_in_progress"
	CategoryFinishedGood   InventoryCategory = "finished_good"
)

// IsValidCategory проверяет раздел склада.
func IsValidCategory(c string) bool {
	switch InventoryCategory(c) {
	case CategoryRawMaterial, CategoryWorkInProgress, CategoryFinishedGood:
		return true
	}
	return false
}

// InventoryItem — позиция склада: сырьё, незавершённое производство
// или готовая пряжа. Поля, не относящиеся к разделу, пустые.
type InventoryItem struct {
	ID          string
	Category    InventoryCategory
	Name        string
	BatchNumber string
	Quantity    float64
	Unit        string
	Location    string
	// Stage и Machine — для незавершённого производства
	Stage   string
	Machine string
	// Count и PackageType — для готовой пряжи
	Count       string
	PackageType string
	Status      string
	UpdatedAt   time.Time
}

// QualityStatus — итог лабораторного теста.
type QualityStatus string

// Итоги теста.
const (
	QualityPass    QualityStatus = "pass"
	QualityWarning QualityStatus = "warning"
	QualityFail    QualityStatus = "fail"
)

// QualityTest — результат лабораторного теста пряжи (параметры в %).
type QualityTest struct {
	ID              string
	TestedAt        time.Time
	Batch           string
	Machine         string
	Twist           float64
	Evenness        float64
	TensileStrength float64
	Elongation      float64
	Hairiness       float64
	Status          QualityStatus
}

// Parameters возвращает параметры теста в порядке вывода.
func (q *QualityTest) Parameters() []float64 {
	return []float64{q.Twist, q.Evenness, q.TensileStrength, q.Elongation, q.Hairiness}
}

// ClassifyQuality вычисляет итог теста по минимальному параметру:
// ≥ 86 — pass, ≥ 84 — warning, иначе fail.
func ClassifyQuality(params ...float64) QualityStatus {
	if len(params) == 0 {
		return QualityFail
	}
	lowest := params[0]
	for _, p := range params[1:] {
		if p < lowest {
			lowest = p
		}
	}
	switch {
	case lowest >= 86:
		return QualityPass
	case lowest >= 84:
		return QualityWarning
	default:
		return QualityFail
	}
}

// Order — заказ клиента.
type Order struct {
	ID        string
	Customer  string
	Product   string
	Quantity  string
	Status    string
	OrderedAt time.Time
}
