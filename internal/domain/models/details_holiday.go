package models

import (
	"fmt"

	"github.com/linemk/storefront/internal/validators"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// гирлянды
type GarlandDetails struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	WorkingModes int64           `gorm:"column:working_modes;not null;default:1" json:"working_modes" validate:"nonzero"`
	LengthMeters decimal.Decimal `gorm:"column:length_meters;type:numeric(5,2);not null" json:"length_meters" validate:"positive"`
	BulbForm     string          `gorm:"column:bulb_form;size:64;not null" json:"bulb_form"`
	Color        string          `gorm:"column:color;size:64;not null" json:"color"`
}

func (*GarlandDetails) Kind() string      { return DetailsGarlands }
func (*GarlandDetails) TableName() string { return "garland_details" }

func (d *GarlandDetails) ShortDetails() string {
	return fmt.Sprintf("%d modes/%s m/%s/%s", d.WorkingModes, d.LengthMeters, d.BulbForm, d.Color)
}

func (*GarlandDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "working_modes", Kind: FilterBound},
		{Field: "length_meters", Kind: FilterBound},
		{Field: "bulb_form", Kind: FilterDynamicChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *GarlandDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }

// свечи и светильники
type IlluminationDetails struct {
	ID       int64           `gorm:"primaryKey" json:"id"`
	Color    string          `gorm:"column:color;size:64;not null" json:"color"`
	Form     string          `gorm:"column:form;size:64;not null" json:"form"`
	LengthCm decimal.Decimal `gorm:"column:length_cm;type:numeric(5,2);not null" json:"length_cm" validate:"positive"`
	WidthCm  decimal.Decimal `gorm:"column:width_cm;type:numeric(5,2);not null" json:"width_cm" validate:"positive"`
	HeightCm decimal.Decimal `gorm:"column:height_cm;type:numeric(5,2);not null" json:"height_cm" validate:"positive"`
	IsCandle bool            `gorm:"column:is_candle;not null" json:"is_candle"`
}

func (*IlluminationDetails) Kind() string      { return DetailsIlluminations }
func (*IlluminationDetails) TableName() string { return "illumination_details" }

func (d *IlluminationDetails) ShortDetails() string {
	source := "electric lamp"
	if d.IsCandle {
		source = "candle"
	}
	return fmt.Sprintf("%s/%s/%sx%sx%s cm/%s", d.Color, d.Form, d.LengthCm, d.WidthCm, d.HeightCm, source)
}

func (*IlluminationDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "is_candle", Kind: FilterBoolChoices},
		{Field: "length_cm", Kind: FilterBound},
		{Field: "width_cm", Kind: FilterBound},
		{Field: "height_cm", Kind: FilterBound},
		{Field: "form", Kind: FilterDynamicChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *IlluminationDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }

// венки
type WreathDetails struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	Material        string          `gorm:"column:material;size:256;not null" json:"material"`
	LengthCm        decimal.Decimal `gorm:"column:length_cm;type:numeric(5,2);not null" json:"length_cm" validate:"positive"`
	WidthCm         decimal.Decimal `gorm:"column:width_cm;type:numeric(5,2);not null" json:"width_cm" validate:"positive"`
	Color           string          `gorm:"column:color;size:64;not null" json:"color"`
	HasIllumination bool            `gorm:"column:has_illumination;not null" json:"has_illumination"`
}

func (*WreathDetails) Kind() string      { return DetailsWreaths }
func (*WreathDetails) TableName() string { return "wreath_details" }

func (d *WreathDetails) ShortDetails() string {
	s := fmt.Sprintf("mostly %s/%s/%sx%s cm", d.Color, d.Material, d.LengthCm, d.WidthCm)
	if d.HasIllumination {
		s += "/illuminated"
	}
	return s
}

func (*WreathDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "material", Kind: FilterDynamicChoices},
		{Field: "length_cm", Kind: FilterBound},
		{Field: "width_cm", Kind: FilterBound},
		{Field: "has_illumination", Kind: FilterBoolChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *WreathDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }

// виды елочных украшений
var DecorationTypes = []Choice{
	{Key: "ORN", Label: "Ornaments"},
	{Key: "CHR", Label: "Characters"},
	{Key: "ANI", Label: "Animals"},
	{Key: "SNW", Label: "Snowflakes"},
	{Key: "OTR", Label: "Others"},
}

// елочные украшения
type DecorationDetails struct {
	ID       int64           `gorm:"primaryKey" json:"id"`
	Type     string          `gorm:"column:type;size:3;not null" json:"type" validate:"oneof=ORN CHR ANI SNW OTR"`
	LengthCm decimal.Decimal `gorm:"column:length_cm;type:numeric(5,2);not null" json:"length_cm" validate:"positive"`
	WidthCm  decimal.Decimal `gorm:"column:width_cm;type:numeric(5,2);not null" json:"width_cm" validate:"positive"`
	HeightCm decimal.Decimal `gorm:"column:height_cm;type:numeric(5,2);not null" json:"height_cm" validate:"positive"`
	Material string          `gorm:"column:material;size:256;not null" json:"material"`
	Quantity int64           `gorm:"column:quantity;not null;default:1" json:"quantity" validate:"nonzero"`
	Color    string          `gorm:"column:color;size:64;not null" json:"color"`
}

func (*DecorationDetails) Kind() string      { return DetailsDecorations }
func (*DecorationDetails) TableName() string { return "decoration_details" }

func (d *DecorationDetails) ShortDetails() string {
	return fmt.Sprintf("%s/%d in set/%sx%sx%s cm/%s/%s",
		choiceLabel(DecorationTypes, d.Type), d.Quantity, d.LengthCm, d.WidthCm, d.HeightCm, d.Color, d.Material)
}

func (*DecorationDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "type", Kind: FilterStaticChoices},
		{Field: "length_cm", Kind: FilterBound},
		{Field: "width_cm", Kind: FilterBound},
		{Field: "height_cm", Kind: FilterBound},
		{Field: "quantity", Kind: FilterBound},
		{Field: "material", Kind: FilterDynamicChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (*DecorationDetails) Choices(field string) ([]Choice, bool) {
	if field == "type" {
		return DecorationTypes, true
	}
	return nil, false
}

func (d *DecorationDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }

// подарочная упаковка
type GiftWrapDetails struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Color        string          `gorm:"column:color;size:64;not null" json:"color"`
	Density      string          `gorm:"column:density;size:64;not null" json:"density"`
	LengthCm     decimal.Decimal `gorm:"column:length_cm;type:numeric(5,2);not null" json:"length_cm" validate:"positive"`
	WidthCm      decimal.Decimal `gorm:"column:width_cm;type:numeric(5,2);not null" json:"width_cm" validate:"positive"`
	HasAccent    bool            `gorm:"column:has_accent;not null" json:"has_accent"`
	HasPrint     bool            `gorm:"column:has_print;not null" json:"has_print"`
	IsMonochrome bool            `gorm:"column:is_monochrome;not null" json:"is_monochrome"`
}

func (*GiftWrapDetails) Kind() string      { return DetailsGiftWrap }
func (*GiftWrapDetails) TableName() string { return "gift_wrap_details" }

func (d *GiftWrapDetails) ShortDetails() string {
	s := fmt.Sprintf("%s/%s/%sx%s cm/", d.Color, d.Density, d.LengthCm, d.WidthCm)
	if d.HasPrint {
		s += "has print/"
	}
	if d.IsMonochrome {
		s += "monochrome/"
	}
	if d.HasAccent {
		s += "has accent picture"
	}
	return s
}

func (*GiftWrapDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "length_cm", Kind: FilterBound},
		{Field: "width_cm", Kind: FilterBound},
		{Field: "density", Kind: FilterDynamicChoices},
		{Field: "has_accent", Kind: FilterBoolChoices},
		{Field: "has_print", Kind: FilterBoolChoices},
		{Field: "is_monochrome", Kind: FilterBoolChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *GiftWrapDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }

// фейерверки
type FireworksDetails struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	Shots           int64  `gorm:"column:shots;not null" json:"shots" validate:"gte=0"`
	DurationSeconds int64  `gorm:"column:duration_seconds;not null" json:"duration_seconds" validate:"nonzero"`
	MainEffect      string `gorm:"column:main_effect;size:256;not null" json:"main_effect"`
	NumberOfEffects int64  `gorm:"column:number_of_effects;not null" json:"number_of_effects" validate:"nonzero"`
	Color           string `gorm:"column:color;size:64;not null" json:"color"`
}

func (*FireworksDetails) Kind() string      { return DetailsFireworks }
func (*FireworksDetails) TableName() string { return "fireworks_details" }

func (d *FireworksDetails) ShortDetails() string {
	return fmt.Sprintf("%s/mostly %s/%d effects/%d shots/%d s",
		d.MainEffect, d.Color, d.NumberOfEffects, d.Shots, d.DurationSeconds)
}

func (*FireworksDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "shots", Kind: FilterBound},
		{Field: "duration_seconds", Kind: FilterBound},
		{Field: "main_effect", Kind: FilterDynamicChoices},
		{Field: "number_of_effects", Kind: FilterBound},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *FireworksDetails) BeforeSave(tx *gorm.DB) error { return validators.Struct(d) }
