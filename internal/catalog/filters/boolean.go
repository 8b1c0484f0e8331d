package filters

import (
	"fmt"
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

// Bool фильтрует по признаку да/нет/не важно
type Bool struct {
	base
	value *bool
}

// NewBool создает фильтр без выбора
func NewBool(qs *gorm.DB, field string, opts ...Option) *Bool {
	return &Bool{base: newBase(qs, field, opts...)}
}

// Value возвращает выбор; ok == false, если выбора нет
func (f *Bool) Value() (value bool, ok bool) {
	if f.value == nil {
		return false, false
	}
	return *f.value, true
}

// Parse читает {name} как целое: 1 да, 0 нет, остальное сбрасывает выбор
func (f *Bool) Parse(params url.Values) {
	n, err := strconv.Atoi(params.Get(f.name))
	if err != nil {
		return
	}
	switch n {
	case 1:
		v := true
		f.value = &v
	case 0:
		v := false
		f.value = &v
	}
}

func (f *Bool) Apply(db *gorm.DB) *gorm.DB {
	if f.value == nil {
		return session(db)
	}
	return f.narrow(db, f.column()+" = ?", *f.value)
}

func (f *Bool) Describe() string {
	state := "any"
	if f.value != nil {
		state = "no"
		if *f.value {
			state = "yes"
		}
	}
	return fmt.Sprintf("%s: %s", f.name, state)
}
