// seed.go — демонстрационные данные цеха для режима memory.
// Совпадают с миграцией 000002_seed.
package repository

import (
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

// ist — часовой пояс цеха (IST, UTC+05:30).
var ist = time.FixedZone("IST", 5*60*60+30*60)

// day разбирает дату YYYY-MM-DD (паника на некорректном литерале).
func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// SeedMachines возвращает оборудование цеха.
func SeedMachines() []*model.Machine {
	type row struct {
		id, name, typ, area string
		status              model.MachineStatus
		efficiency          int
		last, next          string
	}
	rows := []row{
		{"MCH-001", "Bale Opener", "Opener", "Pre-Spinning", model.MachineRunning, 92, "2023-09-15", "2023-12-15"},
		{"MCH-002", "Carding Machine", "Carding", "Pre-Spinning", model.MachineIdle, 0, "2023-10-05", "2023-11-05"},
		{"MCH-003", "Drawing Frame", "Drawing", "Pre-Spinning", model.MachineRunning, 87, "2023-08-20", "2023-11-20"},
		{"MCH-004", "Roving Frame", "Roving", "Pre-Spinning", model.MachineWarning, 78, "2023-09-10", "2023-12-10"},
		{"MCH-005", "Ring Spinning Unit 1", "Ring Spinning", "Spinning", model.MachineRunning, 95, "2023-10-01", "2024-01-01"},
		{"MCH-006", "Open-End Spinning", "Open-End Spinning", "Spinning", model.MachineRunning, 91, "2023-09-05", "2023-12-05"},
		{"MCH-007", "Winding Machine", "Winding", "Post-Spinning", model.MachineError, 0, "2023-07-15", "2023-10-15"},
		{"MCH-008", "Quality Control Unit", "Quality", "Quality Control", model.MachineRunning, 89, "2023-08-30", "2023-11-30"},
		{"MCH-009", "Combing Machine", "Combing", "Pre-Spinning", model.MachineRunning, 93, "2023-09-25", "2023-12-25"},
		{"MCH-010", "Ring Spinning Unit 2", "Ring Spinning", "Spinning", model.MachineRunning, 90, "2023-08-15", "2023-11-15"},
	}

	result := make([]*model.Machine, 0, len(rows))
	for _, r := range rows {
		result = append(result, &model.Machine{
			ID: r.id, Name: r.name, Type: r.typ, Area: r.area,
			Status: r.status, Efficiency: r.efficiency,
			LastMaintenance: day(r.last), NextMaintenance: day(r.next),
		})
	}
	return result
}

// SeedInventory возвращает позиции склада всех трёх разделов.
func SeedInventory() []*model.InventoryItem {
	raw := func(id, name string, qty float64, location, status string) *model.InventoryItem {
		return &model.InventoryItem{
			ID: id, Category: model.CategoryRawMaterial, Name: name,
			Quantity: qty, Unit: "tons", Location: location, Status: status,
		}
	}
	wip := func(id, batch, name string, qty float64, stage, machine, status string) *model.InventoryItem {
		return &model.InventoryItem{
			ID: id, Category: model.CategoryWorkInProgress, Name: name, BatchNumber: batch,
			Quantity: qty, Unit: "tons", Stage: stage, Machine: machine, Status: status,
		}
	}
	fg := func(id, batch, name, count string, qty float64, location, status string) *model.InventoryItem {
		return &model.InventoryItem{
			ID: id, Category: model.CategoryFinishedGood, Name: name, BatchNumber: batch,
			Count: count, Quantity: qty, Unit: "tons", Location: location,
			PackageType: "cone", Status: status,
		}
	}

	return []*model.InventoryItem{
		raw("RM001", "Cotton - Shankar 6", 35.2, "Warehouse A", "in_stock"),
		raw("RM002", "Cotton - DCH 32", 28.7, "Warehouse A", "in_stock"),
		raw("RM003", "Polyester Staple Fiber", 15.6, "Warehouse B", "low_stock"),
		raw("RM004", "Viscose Fiber", 8.0, "Warehouse B", "critical_stock"),
		raw("RM005", "Cotton - J-34", 45.3, "Warehouse C", "in_stock"),
		wip("WIP001", "B45678", "Cotton Sliver - Carding", 12.5, "carding", "Card C5-01", "in_progress"),
		wip("WIP002", "B45679", "Cotton Roving - Drawing", 10.8, "drawing", "Draw Frame DF-03", "in_progress"),
		wip("WIP003", "B45680", "Polyester Blend - Mixing", 8.4, "mixing", "Blender BL-02", "delayed"),
		wip("WIP004", "B45681", "Cotton Yarn - Spinning", 7.2, "spinning", "Ring Frame RF-05", "in_progress"),
		wip("WIP005", "B45682", "Blended Yarn - Winding", 6.3, "winding", "Winder W-08", "in_progress"),
		fg("FG001", "B12345", "30s Cotton Yarn", "30", 35.8, "Store A", "ready_for_shipment"),
		fg("FG002", "B12346", "40s Cotton Yarn", "40", 28.4, "Store A", "ready_for_shipment"),
		fg("FG003", "B12347", "60s Cotton Yarn", "60", 15.2, "Store B", "quality_check"),
		fg("FG004", "B12348", "20s Polyester Cotton Blend", "20", 42.5, "Store B", "ready_for_shipment"),
		fg("FG005", "B12349", "30s Viscose Blend", "30", 30.9, "Store C", "reserved"),
	}
}

// SeedQualityTests возвращает результаты лабораторных тестов.
func SeedQualityTests() []*model.QualityTest {
	at := func(hour, minute int) time.Time {
		return time.Date(2023, time.July, 15, hour, minute, 0, 0, ist)
	}
	return []*model.QualityTest{
		{ID: "TST001", TestedAt: at(9, 45), Batch: "B2023-0715-01", Machine: "Ring Spinning 03", Twist: 96.3, Evenness: 94.8, TensileStrength: 98.1, Elongation: 92.4, Hairiness: 87.5, Status: model.QualityPass},
		{ID: "TST002", TestedAt: at(11, 30), Batch: "B2023-0715-02", Machine: "Ring Spinning 04", Twist: 95.7, Evenness: 93.9, TensileStrength: 97.8, Elongation: 91.9, Hairiness: 86.9, Status: model.QualityPass},
		{ID: "TST003", TestedAt: at(13, 15), Batch: "B2023-0715-03", Machine: "Ring Spinning 01", Twist: 94.8, Evenness: 92.7, TensileStrength: 96.5, Elongation: 90.8, Hairiness: 85.2, Status: model.QualityWarning},
		{ID: "TST004", TestedAt: at(15, 0), Batch: "B2023-0715-04", Machine: "Ring Spinning 02", Twist: 96.1, Evenness: 94.2, TensileStrength: 97.9, Elongation: 92.1, Hairiness: 87.1, Status: model.QualityPass},
		{ID: "TST005", TestedAt: at(16, 45), Batch: "B2023-0715-05", Machine: "Open-End Spinning 01", Twist: 92.4, Evenness: 91.3, TensileStrength: 94.8, Elongation: 89.5, Hairiness: 82.7, Status: model.QualityFail},
	}
}

// SeedOrders возвращает заказы клиентов.
func SeedOrders() []*model.Order {
	return []*model.Order{
		{ID: "ORD-1234", Customer: "Tamil Textiles Ltd.", Product: "40s Combed Cotton Yarn", Quantity: "500 kg", Status: "Pending", OrderedAt: *day("2023-06-15")},
		{ID: "ORD-1235", Customer: "Chennai Fabrics", Product: "60s Compact Yarn", Quantity: "300 kg", Status: "Processing", OrderedAt: *day("2023-06-14")},
		{ID: "ORD-1236", Customer: "Madurai Mills", Product: "30s Carded Cotton Yarn", Quantity: "1000 kg", Status: "Completed", OrderedAt: *day("2023-06-13")},
		{ID: "ORD-1237", Customer: "Coimbatore Spinners", Product: "20s Blended Yarn", Quantity: "750 kg", Status: "Pending", OrderedAt: *day("2023-06-12")},
	}
}
