package domain

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IDGenerator returns identifiers that are unique within one model.
type IDGenerator func() string

// UUIDs generates random UUID strings.
func UUIDs() IDGenerator {
	return func() string { return uuid.New().String() }
}

// CounterIDs generates "1", "2", "3", ... and is safe for concurrent use.
func CounterIDs() IDGenerator {
	var n atomic.Uint64
	return func() string { return strconv.FormatUint(n.Add(1), 10) }
}

// defaultSeed is the example form shown when a session starts.
var defaultSeed = []struct {
	category Category
	labels   []string
}{
	{CategoryDebts, []string{"Student Loan", "Credit Card"}},
	{CategoryFixedExpenses, []string{"Apartment", "Electricity", "Internet", "Water", "Subscriptions"}},
	{CategorySavings, []string{"Emergency Fund"}},
	{CategoryFun, []string{"Entertainment"}},
}

// BudgetModel holds a salary and the four category lists.
// It is not safe for concurrent use; callers serialize access
// (see BudgetSession).
type BudgetModel struct {
	salary decimal.Decimal
	items  map[Category][]LineItem
	newID  IDGenerator
}

// ModelOption configures a BudgetModel.
type ModelOption func(*BudgetModel)

// WithIDGenerator overrides the default UUID item ids.
func WithIDGenerator(gen IDGenerator) ModelOption {
	return func(m *BudgetModel) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewBudgetModel returns a model with zero salary and four empty categories.
func NewBudgetModel(opts ...ModelOption) *BudgetModel {
	m := &BudgetModel{
		salary: decimal.Zero,
		items:  make(map[Category][]LineItem, len(Categories)),
		newID:  UUIDs(),
	}
	for _, o := range opts {
		o(m)
	}
	for _, c := range Categories {
		m.items[c] = []LineItem{}
	}
	return m
}

// NewSeededBudgetModel returns a model pre-filled with the example items,
// all at zero.
func NewSeededBudgetModel(opts ...ModelOption) *BudgetModel {
	m := NewBudgetModel(opts...)
	for _, s := range defaultSeed {
		for _, label := range s.labels {
			item := m.AddItem(s.category)
			m.SetItemLabel(s.category, item.ID, label)
		}
	}
	return m
}

// SetSalary replaces the salary. Negative values become zero.
func (m *BudgetModel) SetSalary(value decimal.Decimal) {
	m.salary = ClampAmount(value)
}

// SetSalaryInput parses raw form input; garbage becomes zero.
func (m *BudgetModel) SetSalaryInput(raw string) {
	m.salary = ParseAmount(raw)
}

// AddItem appends an empty item to c and returns it.
// An unknown category yields a zero LineItem and no change.
func (m *BudgetModel) AddItem(c Category) LineItem {
	if !c.Valid() {
		return LineItem{}
	}
	item := LineItem{ID: m.freshID(), Amount: decimal.Zero}
	m.items[c] = append(m.items[c], item)
	return item
}

// RemoveItem deletes the item with id from c. It reports whether an item
// was removed; an absent id is a no-op.
func (m *BudgetModel) RemoveItem(c Category, id string) bool {
	i := m.indexOf(c, id)
	if i < 0 {
		return false
	}
	list := m.items[c]
	m.items[c] = append(list[:i:i], list[i+1:]...)
	return true
}

// UpdateItem sets field on the item with id. Amount input is parsed with
// ParseAmount. It reports whether an item was changed.
func (m *BudgetModel) UpdateItem(c Category, id string, field ItemField, value string) bool {
	switch field {
	case FieldLabel:
		return m.SetItemLabel(c, id, value)
	case FieldAmount:
		return m.SetItemAmount(c, id, ParseAmount(value))
	}
	return false
}

// SetItemLabel renames an item in place.
func (m *BudgetModel) SetItemLabel(c Category, id, label string) bool {
	i := m.indexOf(c, id)
	if i < 0 {
		return false
	}
	m.items[c][i].Label = label
	return true
}

// SetItemAmount changes an item's amount in place, clamping negatives.
func (m *BudgetModel) SetItemAmount(c Category, id string, amount decimal.Decimal) bool {
	i := m.indexOf(c, id)
	if i < 0 {
		return false
	}
	m.items[c][i].Amount = ClampAmount(amount)
	return true
}

// Snapshot recomputes every derived value from the current state.
func (m *BudgetModel) Snapshot() Snapshot {
	totals := make(map[Category]decimal.Decimal, len(Categories))
	allocated := decimal.Zero
	for _, c := range Categories {
		t := decimal.Zero
		for _, it := range m.items[c] {
			t = t.Add(it.Amount)
		}
		totals[c] = t
		allocated = allocated.Add(t)
	}

	remaining := m.salary.Sub(allocated)
	unallocated := decimal.Zero
	if remaining.IsPositive() {
		unallocated = remaining
	}

	return Snapshot{
		Salary:         m.salary,
		CategoryTotals: totals,
		Allocated:      allocated,
		Remaining:      remaining,
		DisplaySavings: totals[CategorySavings].Add(unallocated),
		Unallocated:    unallocated,
		HasUnallocated: remaining.IsPositive(),
		OverAllocated:  remaining.IsNegative(),
	}
}

// State returns a deep copy of the salary and items.
func (m *BudgetModel) State() BudgetState {
	cats := make(map[Category][]LineItem, len(Categories))
	for _, c := range Categories {
		cats[c] = append([]LineItem(nil), m.items[c]...)
		if cats[c] == nil {
			cats[c] = []LineItem{}
		}
	}
	return BudgetState{Salary: m.salary, Categories: cats}
}

// Items returns a copy of the items in c.
func (m *BudgetModel) Items(c Category) []LineItem {
	return append([]LineItem(nil), m.items[c]...)
}

func (m *BudgetModel) indexOf(c Category, id string) int {
	for i, it := range m.items[c] {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// freshID draws ids until one is unused in every category. A generator
// that keeps repeating itself is abandoned for UUIDs.
func (m *BudgetModel) freshID() string {
	gen := m.newID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			gen = UUIDs()
		}
		id := gen()
		if id != "" && !m.hasID(id) {
			return id
		}
	}
}

const maxIDAttempts = 8

func (m *BudgetModel) hasID(id string) bool {
	for _, c := range Categories {
		if m.indexOf(c, id) >= 0 {
			return true
		}
	}
	return false
}
