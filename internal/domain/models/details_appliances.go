package models

import (
	"fmt"
	"strconv"

	"github.com/linemk/storefront/internal/validators"
	"gorm.io/gorm"
)

// характеристики телефонов
type PhoneDetails struct {
	ID                int64  `gorm:"primaryKey" json:"id"`
	MemoryKB          int64  `gorm:"column:memory_kb;not null" json:"memory_kb" validate:"gte=0"`
	DisplayResolution string `gorm:"column:display_resolution;size:16;not null" json:"display_resolution" validate:"resolution"`
	CameraResolution  string `gorm:"column:camera_resolution;size:16;not null" json:"camera_resolution" validate:"resolution"`
	Color             string `gorm:"column:color;size:32;not null" json:"color"`
}

func (*PhoneDetails) Kind() string      { return DetailsPhones }
func (*PhoneDetails) TableName() string { return "phone_details" }

func (d *PhoneDetails) ShortDetails() string {
	gb := strconv.FormatFloat(float64(d.MemoryKB)/1024/1024, 'f', -1, 64)
	return fmt.Sprintf("%s/%s/%sGB", d.Color, d.DisplayResolution, gb)
}

func (*PhoneDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "memory_kb", Kind: FilterBound},
		{Field: "display_resolution", Kind: FilterDynamicChoices},
		{Field: "camera_resolution", Kind: FilterDynamicChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (d *PhoneDetails) BeforeSave(tx *gorm.DB) error {
	return validators.Struct(d)
}

// классы энергоэффективности ЕС
var EUEnergyLabels = []Choice{
	{Key: "A+++", Label: "A+++"},
	{Key: "A++", Label: "A++"},
	{Key: "A+", Label: "A+"},
	{Key: "A", Label: "A"},
	{Key: "B", Label: "B"},
	{Key: "C", Label: "C"},
	{Key: "D", Label: "D"},
	{Key: "E", Label: "E"},
	{Key: "F", Label: "F"},
	{Key: "G", Label: "G"},
}

// характеристики холодильников
type FridgeDetails struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	VolumeLiters  int64  `gorm:"column:volume_liters;not null" json:"volume_liters" validate:"gte=0"`
	HasFreezer    bool   `gorm:"column:has_freezer;not null" json:"has_freezer"`
	Color         string `gorm:"column:color;size:32;not null;default:White" json:"color"`
	EUEnergyLabel string `gorm:"column:eu_energy_label;size:8;not null" json:"eu_energy_label" validate:"oneof=A+++ A++ A+ A B C D E F G"`
}

func (*FridgeDetails) Kind() string      { return DetailsFridges }
func (*FridgeDetails) TableName() string { return "fridge_details" }

func (d *FridgeDetails) ShortDetails() string {
	freezer := "no freezer"
	if d.HasFreezer {
		freezer = "freezer"
	}
	return fmt.Sprintf("%s/%dL/%s/%s", d.Color, d.VolumeLiters, d.EUEnergyLabel, freezer)
}

func (*FridgeDetails) Filters() []FieldFilter {
	return []FieldFilter{
		{Field: "volume_liters", Kind: FilterBound},
		{Field: "has_freezer", Kind: FilterBoolChoices},
		{Field: "eu_energy_label", Kind: FilterStaticChoices},
		{Field: "color", Kind: FilterDynamicChoices},
	}
}

func (*FridgeDetails) Choices(field string) ([]Choice, bool) {
	if field == "eu_energy_label" {
		return EUEnergyLabels, true
	}
	return nil, false
}

func (d *FridgeDetails) BeforeSave(tx *gorm.DB) error {
	return validators.Struct(d)
}
