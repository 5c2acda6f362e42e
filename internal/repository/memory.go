// memory.go — реализации репозиториев в памяти (SW_STORAGE=memory).
// Возвращаемые значения — копии: вызывающий код не может изменить
// хранимые записи в обход репозитория.
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// MemoryStore — набор репозиториев в памяти.
type MemoryStore struct {
	Profiles  *MemoryProfiles
	Machines  *MemoryMachines
	Inventory *MemoryInventory
	Quality   *MemoryQuality
	Orders    *MemoryOrders
}

// NewMemoryStore создаёт репозитории в памяти.
// seed — засеять демонстрационные данные цеха.
func NewMemoryStore(seed bool) *MemoryStore {
	s := &MemoryStore{
		Profiles:  NewMemoryProfiles(),
		Machines:  &MemoryMachines{items: make(map[string]*model.Machine)},
		Inventory: &MemoryInventory{items: make(map[string]*model.InventoryItem)},
		Quality:   &MemoryQuality{items: make(map[string]*model.QualityTest)},
		Orders:    &MemoryOrders{},
	}
	if !seed {
		return s
	}

	now := time.Now()
	for _, m := range SeedMachines() {
		m.CreatedAt = now
		s.Machines.items[m.ID] = m
	}
	for _, it := range SeedInventory() {
		it.UpdatedAt = now
		s.Inventory.items[it.ID] = it
	}
	for _, t := range SeedQualityTests() {
		s.Quality.items[t.ID] = t
	}
	s.Orders.items = SeedOrders()
	return s
}

// --- Profiles ---

// MemoryProfiles — ProfileRepository и ProfileTransactor в памяти.
type MemoryProfiles struct {
	mu    sync.RWMutex
	items map[string]*model.Profile
	now   func() time.Time
}

// NewMemoryProfiles создаёт пустой репозиторий профилей.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{items: make(map[string]*model.Profile), now: time.Now}
}

func (r *MemoryProfiles) Create(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(p)
}

func (r *MemoryProfiles) createLocked(p *model.Profile) error {
	if _, exists := r.items[p.ID]; exists {
		return ErrConflict
	}
	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, p.Email) {
			return ErrConflict
		}
	}

	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	r.items[p.ID] = &stored
	return nil
}

func (r *MemoryProfiles) GetByID(_ context.Context, id string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *MemoryProfiles) List(_ context.Context, role *rbac.Role) ([]*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Profile, 0, len(r.items))
	for _, p := range r.items {
		if role != nil && p.Role != *role {
			continue
		}
		out := *p
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Email < result[j].Email
	})
	return result, nil
}

func (r *MemoryProfiles) Update(_ context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(id, upd)
}

func (r *MemoryProfiles) updateLocked(id string, upd model.ProfileUpdate) (*model.Profile, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		phone := *upd.Phone
		p.Phone = &phone
	}
	if upd.PreferredLanguage != nil {
		p.PreferredLanguage = *upd.PreferredLanguage
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}
	p.UpdatedAt = r.now()

	out := *p
	return &out, nil
}

// WithinTx выполняет fn над снимком профилей. При ошибке fn
// изменения отбрасываются. Транзакции сериализуются.
func (r *MemoryProfiles) WithinTx(ctx context.Context, fn func(repo ProfileRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]*model.Profile, len(r.items))
	for id, p := range r.items {
		cp := *p
		snapshot[id] = &cp
	}

	tx := &memoryProfilesTx{parent: r}
	if err := fn(tx); err != nil {
		r.items = snapshot
		return err
	}
	return nil
}

// memoryProfilesTx — ProfileRepository внутри WithinTx (блокировка уже взята).
type memoryProfilesTx struct {
	parent *MemoryProfiles
}

func (t *memoryProfilesTx) Create(_ context.Context, p *model.Profile) error {
	return t.parent.createLocked(p)
}

func (t *memoryProfilesTx) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := t.parent.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (t *memoryProfilesTx) List(_ context.Context, role *rbac.Role) ([]*model.Profile, error) {
	var result []*model.Profile
	for _, p := range t.parent.items {
		if role == nil || p.Role == *role {
			out := *p
			result = append(result, &out)
		}
	}
	return result, nil
}

func (t *memoryProfilesTx) Update(_ context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error) {
	return t.parent.updateLocked(id, upd)
}

// --- Machines ---

// MemoryMachines — MachineRepository в памяти.
type MemoryMachines struct {
	mu    sync.RWMutex
	items map[string]*model.Machine
}

func (r *MemoryMachines) List(_ context.Context, filter model.MachineFilter) ([]*model.Machine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Machine
	for _, m := range r.items {
		if filter.Area != "" && m.Area != filter.Area {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out := *m
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryMachines) Create(_ context.Context, m *model.Machine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[m.ID]; exists {
		return ErrConflict
	}
	m.CreatedAt = time.Now()
	stored := *m
	r.items[m.ID] = &stored
	return nil
}

func (r *MemoryMachines) CountByStatus(_ context.Context) (model.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := model.StatusCount{}
	for _, m := range r.items {
		counts[string(m.Status)]++
	}
	return counts, nil
}

// --- Inventory ---

// MemoryInventory — InventoryRepository в памяти.
type MemoryInventory struct {
	mu    sync.RWMutex
	items map[string]*model.InventoryItem
}

func (r *MemoryInventory) List(_ context.Context, category model.InventoryCategory) ([]*model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.InventoryItem
	for _, it := range r.items {
		if category != "" && it.Category != category {
			continue
		}
		out := *it
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryInventory) Create(_ context.Context, it *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[it.ID]; exists {
		return ErrConflict
	}
	it.UpdatedAt = time.Now()
	stored := *it
	r.items[it.ID] = &stored
	return nil
}

func (r *MemoryInventory) Totals(_ context.Context) ([]model.InventoryTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCategory := make(map[model.InventoryCategory]*model.InventoryTotal)
	for _, it := range r.items {
		t, ok := byCategory[it.Category]
		if !ok {
			t = &model.InventoryTotal{Category: it.Category}
			byCategory[it.Category] = t
		}
		t.Items++
		t.Quantity += it.Quantity
	}

	result := make([]model.InventoryTotal, 0, len(byCategory))
	for _, t := range byCategory {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// --- Quality ---

// MemoryQuality — QualityRepository в памяти.
type MemoryQuality struct {
	mu    sync.RWMutex
	items map[string]*model.QualityTest
}

func (r *MemoryQuality) List(_ context.Context, search string) ([]*model.QualityTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var result []*model.QualityTest
	for _, t := range r.items {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.ID), needle) &&
			!strings.Contains(strings.ToLower(t.Batch), needle) &&
			!strings.Contains(strings.ToLower(t.Machine), needle) {
			continue
		}
		out := *t
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].TestedAt.Equal(result[j].TestedAt) {
			return result[i].TestedAt.After(result[j].TestedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *MemoryQuality) Create(_ context.Context, t *model.QualityTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.ID]; exists {
		return ErrConflict
	}
	stored := *t
	r.items[t.ID] = &stored
	return nil
}

// --- Orders ---

// MemoryOrders — OrderRepository в памяти.
type MemoryOrders struct {
	mu    sync.RWMutex
	items []*model.Order
}

func (r *MemoryOrders) ListRecent(_ context.Context, limit int) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]*model.Order, 0, len(r.items))
	for _, o := range r.items {
		out := *o
		sorted = append(sorted, &out)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].OrderedAt.Equal(sorted[j].OrderedAt) {
			return sorted[i].OrderedAt.After(sorted[j].OrderedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}
