// mapping.go — преобразование доменных моделей в типы API.
package handlers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/arjun8815/spinwise-erp/internal/api/generated"
	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

func mapUser(p *model.Profile) generated.User {
	return generated.User{
		Id:        p.ID,
		Email:     openapi_types.Email(p.Email),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Role:      generated.Role(p.Role),
		Language:  generated.Language(p.PreferredLanguage),
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func mapMachine(m *model.Machine) generated.Machine {
	return generated.Machine{
		Id:               m.ID,
		Name:             m.Name,
		Type:             m.Type,
		Area:             m.Area,
		Status:           generated.MachineStatus(m.Status),
		Efficiency:       m.Efficiency,
		Model:            optional(m.Model),
		Manufacturer:     optional(m.Manufacturer),
		Description:      optional(m.Description),
		InstallationDate: optionalDate(m.InstallationDate),
		OutputMetric:     optional(m.OutputMetric),
		OutputUnit:       optional(m.OutputUnit),
		LastMaintenance:  optionalDate(m.LastMaintenance),
		NextMaintenance:  optionalDate(m.NextMaintenance),
	}
}

func mapInventoryItem(it *model.InventoryItem) generated.InventoryItem {
	return generated.InventoryItem{
		Id:          it.ID,
		Category:    generated.InventoryCategory(it.Category),
		Name:        it.Name,
		BatchNumber: optional(it.BatchNumber),
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		Location:    optional(it.Location),
		Stage:       optional(it.Stage),
		Machine:     optional(it.Machine),
		Count:       optional(it.Count),
		PackageType: optional(it.PackageType),
		Status:      it.Status,
	}
}

func mapTotals(totals []model.InventoryTotal) []generated.InventoryTotal {
	out := make([]generated.InventoryTotal, len(totals))
	for i, t := range totals {
		out[i] = generated.InventoryTotal{
			Category: generated.InventoryCategory(t.Category),
			Items:    t.Items,
			Quantity: t.Quantity,
		}
	}
	return out
}

func mapQualityTest(t *model.QualityTest) generated.QualityTest {
	return generated.QualityTest{
		Id:              t.ID,
		TestedAt:        t.TestedAt.UTC(),
		Batch:           t.Batch,
		Machine:         t.Machine,
		Twist:           t.Twist,
		Evenness:        t.Evenness,
		TensileStrength: t.TensileStrength,
		Elongation:      t.Elongation,
		Hairiness:       t.Hairiness,
		Status:          generated.QualityStatus(t.Status),
	}
}

func mapQualityTests(tests []*model.QualityTest) []generated.QualityTest {
	out := make([]generated.QualityTest, len(tests))
	for i, t := range tests {
		out[i] = mapQualityTest(t)
	}
	return out
}

func mapSeries(points []model.SeriesPoint) []generated.SeriesPoint {
	out := make([]generated.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = generated.SeriesPoint{Label: p.Label, Values: p.Values}
	}
	return out
}

func date(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

func optionalDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	d := date(*t)
	return &d
}
