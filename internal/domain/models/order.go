package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// недопустимый переход в жизненном цикле заказа
	ErrWrongStateChange = errors.New("wrong order state change")
	// заказ нельзя оформить без адреса доставки
	ErrBlankShipment = errors.New("shipping address is blank")
)

// OrderState: корзина -> оформлен -> выполнен
type OrderState string

const (
	StateBasket  OrderState = "basket"
	StateOrdered OrderState = "ordered"
	StateDone    OrderState = "done"
)

// Order хранит корзину или заказ пользователя.
// Инвариант: Done влечет Ordered.
type Order struct {
	ID        uuid.UUID  `json:"id"`
	UserID    int64      `json:"user_id"`
	ShipTo    *string    `json:"ship_to,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Ordered   bool       `json:"ordered"`
	OrderedAt *time.Time `json:"ordered_at,omitempty"`
	Done      bool       `json:"done"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

// State вычисляет состояние по флагам
func (o *Order) State() OrderState {
	switch {
	case o.Done:
		return StateDone
	case o.Ordered:
		return StateOrdered
	default:
		return StateBasket
	}
}

// MarkOrdered переводит корзину в оформленный заказ. В БД не сохраняет.
func (o *Order) MarkOrdered() error {
	if o.Ordered {
		return ErrWrongStateChange
	}
	if o.ShipTo == nil || *o.ShipTo == "" {
		return ErrBlankShipment
	}
	now := time.Now()
	o.Ordered = true
	o.OrderedAt = &now
	return nil
}

// MarkDone завершает оформленный заказ. В БД не сохраняет.
func (o *Order) MarkDone() error {
	if !o.Ordered || o.Done {
		return ErrWrongStateChange
	}
	now := time.Now()
	o.Done = true
	o.DoneAt = &now
	return nil
}

// OrderLine: товар в заказе; цена и скидка фиксируются в момент добавления
type OrderLine struct {
	ID                    int64           `json:"id"`
	OrderID               uuid.UUID       `json:"order_id"`
	ProductID             int64           `json:"product_id"`
	ProductName           string          `json:"product_name"` // заполняется через JOIN с products
	BuyingPrice           decimal.Decimal `json:"buying_price" validate:"positive"`
	BuyingDiscountPercent decimal.Decimal `json:"buying_discount_percent" validate:"percent"`
	Amount                int             `json:"amount" validate:"nonzero,gt=0"`
}
