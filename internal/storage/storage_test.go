package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumns = []string{"id", "user_id", "ship_to", "created_at", "ordered", "ordered_at", "done", "done_at"}

func TestGetUserByID_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	userID := int64(1)

	rows := sqlmock.NewRows([]string{"id", "email", "pass_hash"}).
		AddRow(userID, "test@example.com", []byte("hashed-password"))

	mock.ExpectQuery("SELECT id, email, pass_hash FROM users WHERE id = \\$1").
		WithArgs(userID).WillReturnRows(rows)

	user, err := repo.GetUserByID(ctx, userID)
	assert.NoError(t, err, "Expected no error when user is found")
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, []byte("hashed-password"), user.PassHash)

	// Проверяем, что все ожидания sqlmock выполнены.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	mock.ExpectQuery("SELECT id, email, pass_hash FROM users WHERE id = \\$1").
		WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"id", "email", "pass_hash"}))

	user, err := repo.GetUserByID(context.Background(), 2)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "pass_hash"}).
		AddRow(int64(5), "buyer@example.com", []byte("hash"))
	mock.ExpectQuery("SELECT id, email, pass_hash FROM users WHERE email = \\$1").
		WithArgs("buyer@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), "buyer@example.com")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users \\(email, pass_hash\\) VALUES \\(\\$1, \\$2\\) RETURNING id").
		WithArgs("new@example.com", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	user, err := repo.CreateUser(context.Background(), &models.User{Email: "new@example.com", PassHash: []byte("hash")})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.CreateUser(context.Background(), &models.User{Email: "dup@example.com", PassHash: []byte("hash")})
	assert.ErrorIs(t, err, storage.ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProductTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewStockRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1 AND published_at <= $2 FOR UPDATE")).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "discount_percent", "units_available", "category_id"}).
			AddRow(int64(1), "Galaxy W", "28500.00", "5.50", 100, int64(1)))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	p, err := repo.LockProductTx(context.Background(), tx, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, "Galaxy W", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(28500)))
	assert.Equal(t, "5.5", p.DiscountPercent.String())
	assert.Equal(t, 100, p.UnitsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProductTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewStockRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "discount_percent", "units_available", "category_id"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.LockProductTx(context.Background(), tx, 42, time.Now())
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProductTx_WaitsForLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewStockRepository(db)

	// блокировка ждет занятую строку, NOWAIT не используется
	deadlock := &pq.Error{Code: "40P01", Message: "deadlock detected"}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("AND published_at <= $2 FOR UPDATE") + "$").
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnError(deadlock)
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.LockProductTx(context.Background(), tx, 1, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrProductNotFound)
	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("40P01"), pqErr.Code)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnitsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewStockRepository(db)
	reserve := regexp.QuoteMeta("UPDATE products SET units_available = units_available - $1 WHERE id = $2 AND units_available >= $1")

	mock.ExpectBegin()
	mock.ExpectExec(reserve).WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(reserve).WithArgs(500, int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.ReserveUnitsTx(context.Background(), tx, 1, 2))
	assert.ErrorIs(t, repo.ReserveUnitsTx(context.Background(), tx, 1, 500), storage.ErrStockChanged)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseUnitsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewStockRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET units_available = units_available + $1 WHERE id = $2")).
		WithArgs(3, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.ReleaseUnitsTx(context.Background(), tx, 1, 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBasketTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()
	created := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders\\s+WHERE user_id = \\$1 AND NOT ordered AND NOT done").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(id.String(), int64(3), nil, created, false, nil, false, nil))
	mock.ExpectQuery("FROM orders\\s+WHERE user_id = \\$1 AND NOT ordered AND NOT done").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(orderColumns))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	basket, err := repo.GetBasketTx(context.Background(), tx, 3)
	require.NoError(t, err)
	assert.Equal(t, id, basket.ID)
	assert.Nil(t, basket.ShipTo)
	assert.Equal(t, models.StateBasket, basket.State())

	_, err = repo.GetBasketTx(context.Background(), tx, 4)
	assert.ErrorIs(t, err, storage.ErrBasketNotFound)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBasketTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (id, user_id, created_at, ordered, done)")).
		WithArgs(sqlmock.AnyArg(), int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	basket, err := repo.CreateBasketTx(context.Background(), tx, 3)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NotEqual(t, uuid.Nil, basket.ID)
	assert.Equal(t, int64(3), basket.UserID)
	assert.Equal(t, models.StateBasket, basket.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()
	created := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	ordered := created.Add(time.Hour)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(id.String(), int64(3), "Moscow, Red Square 1", created, true, ordered, false, nil))

	order, err := repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, order.ShipTo)
	assert.Equal(t, "Moscow, Red Square 1", *order.ShipTo)
	require.NotNil(t, order.OrderedAt)
	assert.True(t, ordered.Equal(*order.OrderedAt))
	assert.Nil(t, order.DoneAt)
	assert.Equal(t, models.StateOrdered, order.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err = repo.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStateTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	shipTo := "Berlin"
	order := &models.Order{ID: uuid.New(), UserID: 1, ShipTo: &shipTo}
	require.NoError(t, order.MarkOrdered())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET ship_to = $1, ordered = $2, ordered_at = $3, done = $4, done_at = $5 WHERE id = $6")).
		WithArgs("Berlin", true, sqlmock.AnyArg(), false, nil, order.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.SaveStateTx(context.Background(), tx, order))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	created := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(orderColumns).
		AddRow(uuid.NewString(), int64(1), nil, created.Add(time.Hour), false, nil, false, nil).
		AddRow(uuid.NewString(), int64(1), "Berlin", created, true, created, true, created)
	mock.ExpectQuery("FROM orders WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(int64(1)).WillReturnRows(rows)

	orders, err := repo.GetOrdersByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, models.StateBasket, orders[0].State())
	assert.Equal(t, models.StateDone, orders[1].State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	mock.ExpectQuery("FROM orders WHERE user_id = \\$1").WillReturnError(errors.New("query error"))

	orders, err := repo.GetOrdersByUserID(context.Background(), 1)
	assert.Nil(t, orders)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderLineRepository(db)
	orderID := uuid.New()
	line := &models.OrderLine{
		OrderID:               orderID,
		ProductID:             1,
		BuyingPrice:           decimal.NewFromInt(28500),
		BuyingDiscountPercent: decimal.Zero,
		Amount:                2,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("(?s)INSERT INTO order_products .* ON CONFLICT \\(order_id, product_id\\)\\s+DO UPDATE SET amount = order_products.amount \\+ EXCLUDED.amount").
		WithArgs(orderID, int64(1), "28500", "0", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "buying_price", "buying_discount_percent"}).
			AddRow(int64(10), 4, "28500.00", "0.00"))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.AddLineTx(context.Background(), tx, line))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(10), line.ID)
	assert.Equal(t, 4, line.Amount)
	assert.True(t, line.BuyingPrice.Equal(decimal.NewFromInt(28500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockLineTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderLineRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM order_products WHERE order_id = \\$1 AND product_id = \\$2 FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "buying_price", "buying_discount_percent", "amount"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.LockLineTx(context.Background(), tx, uuid.New(), 1)
	assert.ErrorIs(t, err, storage.ErrOrderLineNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseAndDeleteLineTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderLineRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE order_products SET amount = amount - $1 WHERE id = $2 AND amount > $1")).
		WithArgs(1, int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_products WHERE id = $1")).
		WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_products WHERE id = $1")).
		WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.DecreaseLineTx(context.Background(), tx, 10, 1))
	assert.NoError(t, repo.DeleteLineTx(context.Background(), tx, 10))
	assert.ErrorIs(t, repo.DeleteLineTx(context.Background(), tx, 10), storage.ErrOrderLineNotFound)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderLineRepository(db)
	orderID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "buying_price", "buying_discount_percent", "amount"}).
		AddRow(int64(1), orderID.String(), int64(1), "Galaxy W", "28500.00", "0.00", 4).
		AddRow(int64(2), orderID.String(), int64(4), "Freeze One", "78500.00", "10.00", 1)
	mock.ExpectQuery("FROM order_products op\\s+JOIN products p ON op.product_id = p.id").
		WithArgs(orderID).WillReturnRows(rows)

	lines, err := repo.GetLines(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Galaxy W", lines[0].ProductName)
	assert.Equal(t, 4, lines[0].Amount)
	assert.Equal(t, "10", lines[1].BuyingDiscountPercent.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
