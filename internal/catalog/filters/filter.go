// Package filters превращает параметры запроса в условия на выборку товаров.
//
// Фильтр строится по нефильтрованной выборке (по ней вычисляются границы и
// варианты значений), затем Parse читает параметры запроса, а Apply сужает
// любую выборку товаров. Parse никогда не возвращает ошибок: некорректный ввод
// просто не меняет состояние фильтра.
package filters

import (
	"errors"
	"net/url"

	"gorm.io/gorm"
)

// ErrNotImplemented возвращается фабрикой для неизвестного вида фильтра
var ErrNotImplemented = errors.New("filter kind is not implemented")

// Filter описывает общий контракт всех фильтров
type Filter interface {
	// Name: имя, от которого строятся ключи параметров запроса
	Name() string
	Parse(params url.Values)
	// Apply возвращает суженную выборку, не меняя состояние фильтра
	Apply(db *gorm.DB) *gorm.DB
	Describe() string
}

// Related описывает переход от товара к записи варианта характеристик.
// Поле фильтра тогда относится к таблице Table, а товары отбираются по details_type/details_id.
type Related struct {
	Table string
	Type  string
}

// Option настраивает фильтр при создании
type Option func(*base)

// WithName задает имя фильтра (по умолчанию совпадает с именем поля)
func WithName(name string) Option {
	return func(b *base) {
		b.name = name
	}
}

// WithRelated направляет фильтр на поле варианта характеристик
func WithRelated(rel Related) Option {
	return func(b *base) {
		b.related = &rel
	}
}

type base struct {
	field   string
	name    string
	related *Related
	qs      *gorm.DB
}

func newBase(qs *gorm.DB, field string, opts ...Option) base {
	b := base{field: field, name: field, qs: qs}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string {
	return b.name
}

// полное имя колонки с учетом таблицы варианта
func (b *base) column() string {
	if b.related == nil {
		return b.field
	}
	return b.related.Table + "." + b.field
}

// source возвращает выборку, по которой ищутся границы и варианты значений.
// Для поля варианта это строки таблицы варианта, на которые ссылаются товары базовой выборки.
func (b *base) source() *gorm.DB {
	qs := session(b.qs)
	if b.related == nil {
		return qs
	}
	ids := qs.Select("details_id").Where("details_type = ?", b.related.Type)
	return b.qs.Session(&gorm.Session{NewDB: true}).
		Table(b.related.Table).
		Where(b.related.Table+".id IN (?)", ids)
}

// narrow добавляет к выборке товаров условие на поле фильтра
func (b *base) narrow(db *gorm.DB, query string, args ...interface{}) *gorm.DB {
	db = session(db)
	if b.related == nil {
		return session(db.Where(query, args...))
	}
	ids := db.Session(&gorm.Session{NewDB: true}).
		Table(b.related.Table).
		Select(b.related.Table+".id").
		Where(query, args...)
	return session(db.Where("details_type = ? AND details_id IN (?)", b.related.Type, ids))
}

// session делает выборку безопасной для повторного использования:
// последующие вызовы Where не будут менять исходный *gorm.DB
func session(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{})
}
