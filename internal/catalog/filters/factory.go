package filters

import (
	"fmt"

	"github.com/linemk/storefront/internal/domain/models"
	"gorm.io/gorm"
)

// Produce создает фильтр нужного вида.
// Для статического выбора варианты берутся из choices; если их нет, возвращается ошибка.
func Produce(qs *gorm.DB, field string, kind models.FilterKind, choices []models.Choice, opts ...Option) (Filter, error) {
	switch kind {
	case models.FilterBound:
		f, err := NewBound(qs, field, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	case models.FilterDynamicChoices:
		f, err := NewDynamicChoices(qs, field, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	case models.FilterBoolChoices:
		return NewBool(qs, field, opts...), nil
	case models.FilterStaticChoices:
		if len(choices) == 0 {
			return nil, fmt.Errorf("filters.Produce: no choices declared for %s", field)
		}
		return NewStaticChoices(qs, field, choices, opts...), nil
	default:
		return nil, fmt.Errorf("filters.Produce: %s: %w", kind, ErrNotImplemented)
	}
}

// AddForDetails дописывает в list по фильтру на каждую пару (поле, вид) варианта details, в порядке объявления
func AddForDetails(list []Filter, details models.Details, qs *gorm.DB) ([]Filter, error) {
	rel := Related{Table: details.TableName(), Type: details.Kind()}
	provider, _ := details.(models.ChoicesProvider)

	for _, ff := range details.Filters() {
		var choices []models.Choice
		if ff.Kind == models.FilterStaticChoices && provider != nil {
			choices, _ = provider.Choices(ff.Field)
		}
		f, err := Produce(qs, ff.Field, ff.Kind, choices, WithRelated(rel))
		if err != nil {
			return list, err
		}
		list = append(list, f)
	}
	return list, nil
}

// Gather строит полный набор фильтров страницы категории: цена, производитель и фильтры варианта.
// Все фильтры строятся по одной и той же нефильтрованной выборке qs.
func Gather(qs *gorm.DB, details models.Details) ([]Filter, error) {
	price, err := NewBound(qs, "price")
	if err != nil {
		return nil, err
	}
	manufacturer, err := NewDynamicChoices(qs, "manufacturer")
	if err != nil {
		return nil, err
	}

	list := []Filter{price, manufacturer}
	if details == nil {
		return list, nil
	}
	return AddForDetails(list, details, qs)
}

// ApplyAll применяет фильтры по очереди
func ApplyAll(db *gorm.DB, list []Filter) *gorm.DB {
	for _, f := range list {
		db = f.Apply(db)
	}
	return db
}
