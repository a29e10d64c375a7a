package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

func seeded() *Store {
	return New(
		models.Product{ProductCode: "P001", ProductName: "Mukimo", SellingPrice: decimal.RequireFromString("150.00"), QuantityInStock: 10},
		models.Product{ProductCode: "P018", ProductName: "Chapati", SellingPrice: decimal.RequireFromString("30.00"), QuantityInStock: 3},
	)
}

func TestLockAndFetch_SkipsMissingRows(t *testing.T) {
	s := seeded()
	tx, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	snaps, err := tx.LockAndFetch(context.Background(), []string{"P018", "P999", "P001"})
	require.NoError(t, err)

	assert.Len(t, snaps, 2)
	assert.Equal(t, 3, snaps["P018"].QuantityInStock)
	assert.Equal(t, "150.00", snaps["P001"].SellingPrice.StringFixed(2))
}

func TestLockAndFetch_BlocksUntilOwnerCommits(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	first, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = first.LockAndFetch(ctx, []string{"P001"})
	require.NoError(t, err)
	require.NoError(t, first.DecrementStock(ctx, "P001", 4))

	got := make(chan int, 1)
	go func() {
		second, err := s.BeginTx(ctx)
		if err != nil {
			got <- -1
			return
		}
		defer second.Rollback()
		snaps, err := second.LockAndFetch(ctx, []string{"P001"})
		if err != nil {
			got <- -1
			return
		}
		got <- snaps["P001"].QuantityInStock
	}()

	select {
	case <-got:
		t.Fatal("second transaction read a locked row")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Commit())
	select {
	case stock := <-got:
		assert.Equal(t, 6, stock)
	case <-time.After(time.Second):
		t.Fatal("second transaction never acquired the lock")
	}
}

func TestLockAndFetch_ContextCancelledWhileWaiting(t *testing.T) {
	s := seeded()

	holder, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer holder.Rollback()
	_, err = holder.LockAndFetch(context.Background(), []string{"P001"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer waiter.Rollback()

	_, err = waiter.LockAndFetch(ctx, []string{"P001"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSeed_WaitsForRowLock(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.LockAndFetch(ctx, []string{"P001"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Seed(models.Product{ProductCode: "P001", SellingPrice: decimal.RequireFromString("175.00"), QuantityInStock: 50})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("seed overwrote a locked row")
	case <-time.After(50 * time.Millisecond):
	}

	snaps, err := tx.LockAndFetch(ctx, []string{"P001"})
	require.NoError(t, err)
	assert.Equal(t, "150.00", snaps["P001"].SellingPrice.StringFixed(2))
	assert.Equal(t, 10, snaps["P001"].QuantityInStock)

	require.NoError(t, tx.Rollback())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("seed never acquired the row lock")
	}

	p, _ := s.Product("P001")
	assert.Equal(t, "175.00", p.SellingPrice.StringFixed(2))
	assert.Equal(t, 50, p.QuantityInStock)
}

func TestDecrementStock_RequiresLock(t *testing.T) {
	s := seeded()
	tx, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.DecrementStock(context.Background(), "P001", 1)
	assert.ErrorIs(t, err, ErrRowNotLocked)
}

func TestDecrementStock_NeverBelowZero(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.LockAndFetch(ctx, []string{"P018"})
	require.NoError(t, err)
	require.NoError(t, tx.DecrementStock(ctx, "P018", 2))
	assert.ErrorIs(t, tx.DecrementStock(ctx, "P018", 2), ErrInsufficientStock)
}

func TestDecrementStock_RejectsNonPositiveAmount(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.LockAndFetch(ctx, []string{"P018"})
	require.NoError(t, err)
	assert.ErrorIs(t, tx.DecrementStock(ctx, "P018", -2), fulfillment.ErrInvalidDecrement)
	assert.ErrorIs(t, tx.DecrementStock(ctx, "P018", 0), fulfillment.ErrInvalidDecrement)
	require.NoError(t, tx.Commit())

	p, _ := s.Product("P018")
	assert.Equal(t, 3, p.QuantityInStock)
}

func TestRollback_DiscardsWrites(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.LockAndFetch(ctx, []string{"P001"})
	require.NoError(t, err)
	number, err := tx.CreateOrderHeader(ctx, &models.OrderHeader{CustomerNumber: 1})
	require.NoError(t, err)
	require.NoError(t, tx.CreateOrderLine(ctx, models.OrderLine{OrderNumber: number, ProductCode: "P001", Quantity: 1}))
	require.NoError(t, tx.DecrementStock(ctx, "P001", 1))
	require.NoError(t, tx.Rollback())

	p, _ := s.Product("P001")
	assert.Equal(t, 10, p.QuantityInStock)
	assert.Equal(t, 0, s.OrderCount())

	o, err := s.GetByNumber(ctx, number)
	require.NoError(t, err)
	assert.Nil(t, o)

	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
	assert.NoError(t, tx.Rollback())
}

func TestCommit_PersistsOrder(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.LockAndFetch(ctx, []string{"P001"})
	require.NoError(t, err)
	number, err := tx.CreateOrderHeader(ctx, &models.OrderHeader{CustomerNumber: 621})
	require.NoError(t, err)
	require.NoError(t, tx.CreateOrderLine(ctx, models.OrderLine{OrderNumber: number, LineNumber: 1, ProductCode: "P001", Quantity: 2, UnitPrice: decimal.RequireFromString("150.00")}))
	require.NoError(t, tx.DecrementStock(ctx, "P001", 2))
	paymentID, err := tx.CreatePayment(ctx, &models.Payment{OrderNumber: number, Amount: decimal.RequireFromString("300.00")})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())

	p, _ := s.Product("P001")
	assert.Equal(t, 8, p.QuantityInStock)

	o, err := s.GetByNumber(ctx, number)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, 621, o.Header.CustomerNumber)
	assert.Equal(t, number, o.Header.OrderNumber)
	require.Len(t, o.Lines, 1)
	require.NotNil(t, o.Payment)
	assert.Equal(t, paymentID, o.Payment.PaymentID)
}

func TestCreateOrderLine_UnknownOrder(t *testing.T) {
	s := seeded()
	tx, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	assert.Error(t, tx.CreateOrderLine(context.Background(), models.OrderLine{OrderNumber: 5, ProductCode: "P001"}))
	_, err = tx.CreatePayment(context.Background(), &models.Payment{OrderNumber: 5})
	assert.Error(t, err)
}

func TestOrderNumbersIncrease(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	var numbers []int64
	for i := 0; i < 3; i++ {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		n, err := tx.CreateOrderHeader(ctx, &models.OrderHeader{})
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		numbers = append(numbers, n)
	}

	assert.Equal(t, []int64{1, 2, 3}, numbers)
}
