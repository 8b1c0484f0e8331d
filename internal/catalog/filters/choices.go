package filters

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"gorm.io/gorm"
)

// Choices фильтрует по набору дискретных значений.
// Пока ничего не выбрано, действует "показать все" и выборка не сужается.
type Choices struct {
	base
	choices  []models.Choice
	selected map[string]bool
}

// NewDynamicChoices собирает варианты из различных значений поля в базовой выборке
func NewDynamicChoices(qs *gorm.DB, field string, opts ...Option) (*Choices, error) {
	f := &Choices{base: newBase(qs, field, opts...), selected: make(map[string]bool)}

	col := f.column()
	var values []string
	err := f.source().
		Distinct(col).
		Order(col).
		Pluck(col, &values).Error
	if err != nil {
		return nil, fmt.Errorf("filters.NewDynamicChoices: failed to collect %s: %w", col, err)
	}

	f.choices = make([]models.Choice, 0, len(values))
	for _, v := range values {
		f.choices = append(f.choices, models.Choice{Key: v, Label: v})
	}
	return f, nil
}

// NewStaticChoices принимает набор допустимых значений от вызывающего (перечисление поля)
func NewStaticChoices(qs *gorm.DB, field string, choices []models.Choice, opts ...Option) *Choices {
	f := &Choices{base: newBase(qs, field, opts...), selected: make(map[string]bool)}
	f.choices = append([]models.Choice(nil), choices...)
	return f
}

// Options возвращает все известные варианты в порядке отображения
func (f *Choices) Options() []models.Choice {
	return f.choices
}

// Selected возвращает выбранные ключи в порядке вариантов
func (f *Choices) Selected() []string {
	keys := make([]string, 0, len(f.selected))
	for _, c := range f.choices {
		if f.selected[c.Key] {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ShowAll сообщает, что ни одно значение не выбрано
func (f *Choices) ShowAll() bool {
	return len(f.selected) == 0
}

// Parse читает {name} как список через запятую; неизвестные значения игнорируются
func (f *Choices) Parse(params url.Values) {
	raw := params.Get(f.name)
	if raw == "" {
		return
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if f.known(token) {
			f.selected[token] = true
		}
	}
}

func (f *Choices) known(key string) bool {
	for _, c := range f.choices {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (f *Choices) Apply(db *gorm.DB) *gorm.DB {
	if f.ShowAll() {
		return session(db)
	}
	return f.narrow(db, f.column()+" IN ?", f.Selected())
}

func (f *Choices) Describe() string {
	labels := make([]string, 0, len(f.choices))
	for _, c := range f.choices {
		labels = append(labels, c.Label)
	}

	selected := "all"
	if !f.ShowAll() {
		selected = strings.Join(f.Selected(), ", ")
	}
	return fmt.Sprintf("%s: %s (selected: %s)", f.name, strings.Join(labels, ", "), selected)
}
