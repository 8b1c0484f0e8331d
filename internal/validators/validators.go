package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation оборачивает все ошибки проверки данных
var ErrValidation = errors.New("validation failed")

// Коды ошибок, совпадают с тем, что видит клиент в ответе
const (
	CodeOutOfRange     = "out_of_range"
	CodeBadResolution  = "bad_resolution"
	CodeBadDimensions  = "bad_height_width_value"
	CodeBadIntFormat   = "bad_int_format"
	CodeZeroValue      = "zero_value"
	CodeNotPositive    = "not_positive"
	CodeStructValidate = "invalid_fields"
)

// Error описывает нарушение правила проверки поля.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrValidation
}

var hundred = decimal.NewFromInt(100)

// ValidatePercent проверяет, что значение лежит в [0, 100].
func ValidatePercent(value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return &Error{
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("value = %s, but should be positive and less or equal to 100", value),
		}
	}
	return nil
}

var digitsRe = regexp.MustCompile(`^\d+$`)

// ValidateResolution проверяет строку вида "1920x1080".
// Обе части должны быть положительными целыми без ведущих нулей.
func ValidateResolution(value string) error {
	parts := strings.Split(value, "x")
	if len(parts) != 2 {
		return &Error{Code: CodeBadResolution, Message: fmt.Sprintf("%q is not resolution", value)}
	}

	if !digitsRe.MatchString(parts[0]) || !digitsRe.MatchString(parts[1]) {
		return &Error{Code: CodeBadDimensions, Message: fmt.Sprintf("%q is not resolution", value)}
	}

	h, errH := strconv.Atoi(parts[0])
	w, errW := strconv.Atoi(parts[1])
	if errH != nil || errW != nil || h == 0 || w == 0 ||
		strconv.Itoa(h) != parts[0] || strconv.Itoa(w) != parts[1] {
		return &Error{Code: CodeBadIntFormat, Message: fmt.Sprintf("%q contains ill-formed integers", value)}
	}
	return nil
}

// NonZero запрещает нулевое значение.
func NonZero(value decimal.Decimal) error {
	if value.IsZero() {
		return &Error{Code: CodeZeroValue, Message: "value is zero which is forbidden"}
	}
	return nil
}

// PositiveDecimal требует строго положительное значение (размеры, объемы).
func PositiveDecimal(value decimal.Decimal) error {
	if !value.IsPositive() {
		return &Error{Code: CodeNotPositive, Message: fmt.Sprintf("value = %s, but should be positive", value)}
	}
	return nil
}

var validate = New()

// New возвращает validator с зарегистрированными тегами percent, resolution, nonzero и positive.
// decimal.Decimal приводится к строке, чтобы теги работали с ним как с обычным полем.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "percent", decimalRule(ValidatePercent))
	mustRegister(v, "nonzero", decimalRule(NonZero))
	mustRegister(v, "positive", decimalRule(PositiveDecimal))
	mustRegister(v, "resolution", func(fl validator.FieldLevel) bool {
		return ValidateResolution(fl.Field().String()) == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// decimalRule оборачивает проверку decimal в validator.Func.
// Поле может прийти как строка (после CustomTypeFunc) или как целое/вещественное число.
func decimalRule(rule func(decimal.Decimal) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		var d decimal.Decimal
		switch field.Kind() {
		case reflect.String:
			parsed, err := decimal.NewFromString(field.String())
			if err != nil {
				return false
			}
			d = parsed
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			d = decimal.NewFromInt(field.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			d = decimal.NewFromUint64(field.Uint())
		case reflect.Float32, reflect.Float64:
			d = decimal.NewFromFloat(field.Float())
		default:
			return false
		}
		return rule(d) == nil
	}
}

// Struct проверяет структуру по тегам validate и приводит ошибку к ErrValidation.
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return &Error{Code: CodeStructValidate, Message: strings.Join(fields, ", ")}
		}
		return &Error{Code: CodeStructValidate, Message: err.Error()}
	}
	return nil
}
