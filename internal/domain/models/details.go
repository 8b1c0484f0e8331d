package models

import (
	"errors"
	"fmt"
)

// FilterKind: вид фильтра, которым фильтруется поле характеристик
type FilterKind int

const (
	FilterBound FilterKind = iota + 1
	FilterDynamicChoices
	FilterBoolChoices
	FilterStaticChoices
)

func (k FilterKind) String() string {
	switch k {
	case FilterBound:
		return "bound"
	case FilterDynamicChoices:
		return "dynamic_choices"
	case FilterBoolChoices:
		return "bool_choices"
	case FilterStaticChoices:
		return "static_choices"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// FieldFilter: пара (колонка, вид фильтра) из схемы варианта характеристик
type FieldFilter struct {
	Field string
	Kind  FilterKind
}

// Choice: допустимое значение перечисления и его подпись
type Choice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Details описывает вариант расширенных характеристик товара.
// Каждый вариант хранится в своей таблице и сам объявляет, какие фильтры к нему применимы.
type Details interface {
	// дискриминант варианта, хранится в products.details_type и categories.details_type
	Kind() string
	TableName() string
	ShortDetails() string
	Filters() []FieldFilter
}

// ChoicesProvider реализуют варианты, у которых есть поля-перечисления (для статических фильтров)
type ChoicesProvider interface {
	Choices(field string) ([]Choice, bool)
}

// дискриминант не соответствует ни одному варианту
var ErrUnknownDetails = errors.New("unknown details type")

const (
	DetailsPhones        = "phones"
	DetailsFridges       = "fridges"
	DetailsGarlands      = "garlands"
	DetailsIlluminations = "illuminations"
	DetailsWreaths       = "wreaths"
	DetailsDecorations   = "decorations"
	DetailsGiftWrap      = "gift_wrap"
	DetailsFireworks     = "fireworks"
)

// NewDetails возвращает пустую запись варианта по дискриминанту
func NewDetails(kind string) (Details, error) {
	switch kind {
	case DetailsPhones:
		return &PhoneDetails{}, nil
	case DetailsFridges:
		return &FridgeDetails{}, nil
	case DetailsGarlands:
		return &GarlandDetails{}, nil
	case DetailsIlluminations:
		return &IlluminationDetails{}, nil
	case DetailsWreaths:
		return &WreathDetails{}, nil
	case DetailsDecorations:
		return &DecorationDetails{}, nil
	case DetailsGiftWrap:
		return &GiftWrapDetails{}, nil
	case DetailsFireworks:
		return &FireworksDetails{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetails, kind)
	}
}

// AllDetails перечисляет все варианты (для миграций и тестов)
func AllDetails() []Details {
	return []Details{
		&PhoneDetails{},
		&FridgeDetails{},
		&GarlandDetails{},
		&IlluminationDetails{},
		&WreathDetails{},
		&DecorationDetails{},
		&GiftWrapDetails{},
		&FireworksDetails{},
	}
}

func choiceLabel(choices []Choice, key string) string {
	for _, c := range choices {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}
