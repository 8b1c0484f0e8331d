package filters

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bound фильтрует по числовому диапазону.
// Границы [lower, upper] вычисляются по базовой выборке, выбранный диапазон [min, max] всегда внутри них.
type Bound struct {
	base
	lower, upper decimal.Decimal
	min, max     decimal.Decimal
	// known == false, если в базовой выборке нет ни одного значения поля
	known bool
}

type boundsRow struct {
	MinValue decimal.NullDecimal
	MaxValue decimal.NullDecimal
}

// NewBound создает фильтр и вычисляет границы по выборке qs
func NewBound(qs *gorm.DB, field string, opts ...Option) (*Bound, error) {
	f := &Bound{base: newBase(qs, field, opts...)}

	col := f.column()
	var row boundsRow
	err := f.source().
		Select(fmt.Sprintf("MIN(%s) AS min_value, MAX(%s) AS max_value", col, col)).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("filters.NewBound: failed to aggregate %s: %w", col, err)
	}

	if row.MinValue.Valid && row.MaxValue.Valid {
		f.known = true
		f.lower, f.upper = row.MinValue.Decimal, row.MaxValue.Decimal
		f.min, f.max = f.lower, f.upper
	}
	return f, nil
}

// Bounds возвращает границы, найденные в базовой выборке
func (f *Bound) Bounds() (lower, upper decimal.Decimal) {
	return f.lower, f.upper
}

// Selected возвращает текущий выбранный диапазон
func (f *Bound) Selected() (min, max decimal.Decimal) {
	return f.min, f.max
}

// Parse читает {name}_min и {name}_max.
// Нечисловое или отсутствующее значение оставляет соответствующий край как есть.
// Если после прижатия к границам min > max, выбор сбрасывается целиком.
func (f *Bound) Parse(params url.Values) {
	if !f.known {
		return
	}

	if v, err := decimal.NewFromString(params.Get(f.name + "_min")); err == nil {
		f.min = v
	}
	if v, err := decimal.NewFromString(params.Get(f.name + "_max")); err == nil {
		f.max = v
	}

	if f.max.GreaterThan(f.upper) {
		f.max = f.upper
	}
	if f.min.LessThan(f.lower) {
		f.min = f.lower
	}

	if f.min.GreaterThan(f.max) {
		f.min, f.max = f.lower, f.upper
	}
}

func (f *Bound) Apply(db *gorm.DB) *gorm.DB {
	if !f.known {
		return session(db)
	}
	if !f.min.Equal(f.lower) {
		db = f.narrow(db, f.column()+" >= ?", f.min)
	}
	if !f.max.Equal(f.upper) {
		db = f.narrow(db, f.column()+" <= ?", f.max)
	}
	return session(db)
}

func (f *Bound) Describe() string {
	if !f.known {
		return fmt.Sprintf("%s: no values", f.name)
	}
	return fmt.Sprintf("%s: %s-%s (selected %s-%s)", f.name, f.lower, f.upper, f.min, f.max)
}
