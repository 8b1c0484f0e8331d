package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
)

var ErrOrderLineNotFound = errors.New("order line not found")

// OrderLineStorage работает со строками заказа (таблица order_products)
type OrderLineStorage interface {
	// AddLineTx создает строку или прибавляет amount к существующей строке (order, product).
	// Цена и скидка записываются только при создании строки.
	AddLineTx(ctx context.Context, tx *sql.Tx, line *models.OrderLine) error
	// LockLineTx находит строку (order, product) и блокирует ее
	LockLineTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, productID int64) (*models.OrderLine, error)
	DeleteLineTx(ctx context.Context, tx *sql.Tx, id int64) error
	// DecreaseLineTx атомарно уменьшает amount строки
	DecreaseLineTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error
	// CountLinesTx возвращает число строк заказа
	CountLinesTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (int, error)
	// GetLines возвращает строки заказа с названиями товаров
	GetLines(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLine, error)
}

type orderLineRepository struct {
	db *sql.DB
}

func NewOrderLineRepository(db *sql.DB) OrderLineStorage {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) AddLineTx(ctx context.Context, tx *sql.Tx, line *models.OrderLine) error {
	query := `INSERT INTO order_products (order_id, product_id, buying_price, buying_discount_percent, amount)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (order_id, product_id)
	          DO UPDATE SET amount = order_products.amount + EXCLUDED.amount
	          RETURNING id, amount, buying_price, buying_discount_percent`
	row := tx.QueryRowContext(ctx, query,
		line.OrderID, line.ProductID, line.BuyingPrice, line.BuyingDiscountPercent, line.Amount)
	if err := row.Scan(&line.ID, &line.Amount, &line.BuyingPrice, &line.BuyingDiscountPercent); err != nil {
		return fmt.Errorf("failed to add order line: %w", err)
	}
	return nil
}

func (r *orderLineRepository) LockLineTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, productID int64) (*models.OrderLine, error) {
	line := &models.OrderLine{}
	query := `SELECT id, order_id, product_id, buying_price, buying_discount_percent, amount
	          FROM order_products WHERE order_id = $1 AND product_id = $2 FOR UPDATE`
	row := tx.QueryRowContext(ctx, query, orderID, productID)
	err := row.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.BuyingPrice, &line.BuyingDiscountPercent, &line.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderLineNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *orderLineRepository) DeleteLineTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM order_products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete order line: %w", err)
	}
	return expectOne(res, ErrOrderLineNotFound)
}

func (r *orderLineRepository) DecreaseLineTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_products SET amount = amount - $1 WHERE id = $2 AND amount > $1",
		amount, id)
	if err != nil {
		return fmt.Errorf("failed to decrease order line: %w", err)
	}
	return expectOne(res, ErrOrderLineNotFound)
}

func (r *orderLineRepository) CountLinesTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_products WHERE order_id = $1", orderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count order lines: %w", err)
	}
	return n, nil
}

func (r *orderLineRepository) GetLines(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLine, error) {
	query := `
		SELECT op.id, op.order_id, op.product_id, p.name, op.buying_price, op.buying_discount_percent, op.amount
		FROM order_products op
		JOIN products p ON op.product_id = p.id
		WHERE op.order_id = $1
		ORDER BY op.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.OrderLine
	for rows.Next() {
		l := &models.OrderLine{}
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.BuyingPrice, &l.BuyingDiscountPercent, &l.Amount); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func expectOne(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
