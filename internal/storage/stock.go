package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// остаток товара меньше, чем нужно списать
	ErrStockChanged = errors.New("not enough units available")
)

// StockStorage меняет остатки товара внутри транзакции
type StockStorage interface {
	// LockProductTx блокирует строку опубликованного товара до конца транзакции
	LockProductTx(ctx context.Context, tx *sql.Tx, id int64, now time.Time) (*models.Product, error)
	// ReserveUnitsTx атомарно уменьшает остаток; ErrStockChanged, если остатка не хватает
	ReserveUnitsTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error
	// ReleaseUnitsTx атомарно возвращает единицы товара на склад
	ReleaseUnitsTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error
}

type stockRepository struct {
	db *sql.DB
}

func NewStockRepository(db *sql.DB) StockStorage {
	return &stockRepository{db: db}
}

func (r *stockRepository) LockProductTx(ctx context.Context, tx *sql.Tx, id int64, now time.Time) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, name, price, discount_percent, units_available, category_id
	          FROM products WHERE id = $1 AND published_at <= $2 FOR UPDATE`
	row := tx.QueryRowContext(ctx, query, id, now)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.DiscountPercent, &p.UnitsAvailable, &p.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return p, nil
}

func (r *stockRepository) ReserveUnitsTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET units_available = units_available - $1 WHERE id = $2 AND units_available >= $1",
		amount, id)
	if err != nil {
		return fmt.Errorf("failed to reserve units: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStockChanged
	}
	return nil
}

func (r *stockRepository) ReleaseUnitsTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET units_available = units_available + $1 WHERE id = $2",
		amount, id)
	if err != nil {
		return fmt.Errorf("failed to release units: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
