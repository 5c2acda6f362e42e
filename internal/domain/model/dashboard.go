package model

// DashboardStat — карточка показателя на главной странице.
type DashboardStat struct {
	// Key — ключ перевода заголовка
	Key string
	// Value — отформатированное значение («2,450 kg»)
	Value string
	// Trend — изменение за период («8%»), пустое — без тренда
	Trend string
	// Positive — направление тренда
	Positive bool
}

// SeriesPoint — точка временного ряда для графиков.
// Values — значения по именам рядов.
type SeriesPoint struct {
	Label  string
	Values map[string]float64
}

// QualityParameter — агрегированный параметр качества.
type QualityParameter struct {
	// Name — ключ перевода параметра
	Name string
	// Value — среднее значение по тестам, %
	Value float64
	// Status — good или average
	Status string
}

// StatusCount — количество записей в каждом статусе.
type StatusCount map[string]int

// InventoryTotal — итог раздела склада.
type InventoryTotal struct {
	Category InventoryCategory
	Items    int
	Quantity float64
}

// StageStatus — состояние технологического перехода.
type StageStatus string

// Состояния перехода.
const (
	StageActive  StageStatus = "active"
	StageWarning StageStatus = "warning"
	StageError   StageStatus = "error"
)

// ProcessStage — переход технологической цепочки прядения
// с текущей и плановой производительностью (кг/ч).
type ProcessStage struct {
	Number int
	// Key — ключ перевода названия, описание — Key + "Desc"
	Key      string
	Machines []string
	Status   StageStatus
	Current  float64
	Target   float64
}

// Efficiency возвращает выполнение плана в процентах.
// ok = false, если переход стоит или план не задан.
func (p ProcessStage) Efficiency() (pct int, ok bool) {
	if p.Current <= 0 || p.Target <= 0 {
		return 0, false
	}
	return int(p.Current/p.Target*100 + 0.5), true
}

// Lagging — производительность ниже 90% плана.
func (p ProcessStage) Lagging() bool {
	return p.Current < p.Target*0.9
}

// Impact — ожидаемый эффект корректирующего действия.
type Impact string

// Уровни эффекта.
const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Recommendation — корректирующее действие по качеству пряжи.
type Recommendation struct {
	ID string
	// Key — ключ перевода заголовка, описание — Key + "Desc"
	Key     string
	Impact  Impact
	Machine string
}
