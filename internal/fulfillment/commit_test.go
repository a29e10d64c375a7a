package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// recordingTx logs every call and fails the first call named failOn.
type recordingTx struct {
	calls      []string
	failOn     string
	header     models.OrderHeader
	lines      []models.OrderLine
	payment    models.Payment
	decrements map[string]int
	committed  bool
}

func (r *recordingTx) step(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (r *recordingTx) LockAndFetch(context.Context, []string) (map[string]models.ProductSnapshot, error) {
	return nil, r.step("lock")
}

func (r *recordingTx) DecrementStock(_ context.Context, code string, amount int) error {
	if err := r.step("decrement:" + code); err != nil {
		return err
	}
	if r.decrements == nil {
		r.decrements = map[string]int{}
	}
	r.decrements[code] += amount
	return nil
}

func (r *recordingTx) CreateOrderHeader(_ context.Context, h *models.OrderHeader) (int64, error) {
	if err := r.step("header"); err != nil {
		return 0, err
	}
	r.header = *h
	return 77, nil
}

func (r *recordingTx) CreateOrderLine(_ context.Context, l models.OrderLine) error {
	if err := r.step("line:" + l.ProductCode); err != nil {
		return err
	}
	r.lines = append(r.lines, l)
	return nil
}

func (r *recordingTx) CreatePayment(_ context.Context, p *models.Payment) (int64, error) {
	if err := r.step("payment"); err != nil {
		return 0, err
	}
	r.payment = *p
	return 9, nil
}

func (r *recordingTx) Commit() error {
	if err := r.step("commit"); err != nil {
		return err
	}
	r.committed = true
	return nil
}

func (r *recordingTx) Rollback() error {
	r.calls = append(r.calls, "rollback")
	return nil
}

func accepted(code, price string, qty int) Decision {
	return Decision{ProductCode: code, Quantity: qty, UnitPrice: decimal.RequireFromString(price), Accepted: true}
}

var fixedNow = time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)

func TestSequencerCommit(t *testing.T) {
	tx := &recordingTx{}
	seq := NewSequencer(func() time.Time { return fixedNow })

	order, err := seq.Commit(context.Background(), tx, []Decision{
		accepted("P001", "150.00", 2),
		accepted("P072", "0.10", 3),
	}, OrderParams{CustomerNumber: 621, BranchCode: 5, OrderStatusID: 4, PaymentMethodID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"header",
		"line:P001", "decrement:P001",
		"line:P072", "decrement:P072",
		"payment", "commit",
	}, tx.calls)
	assert.True(t, tx.committed)

	assert.Equal(t, fixedNow, tx.header.OrderDate)
	assert.Equal(t, fixedNow.Add(30*time.Minute), tx.header.RequiredDate)
	assert.Equal(t, fixedNow.Add(20*time.Minute), tx.header.DispatchDate)
	assert.Equal(t, 621, tx.header.CustomerNumber)

	assert.Equal(t, int64(77), order.Header.OrderNumber)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(77), order.Lines[1].OrderNumber)
	assert.Equal(t, 2, order.Lines[1].LineNumber)
	assert.Equal(t, map[string]int{"P001": 2, "P072": 3}, tx.decrements)

	assert.Equal(t, "300.30", tx.payment.Amount.StringFixed(2))
	assert.Equal(t, int64(77), tx.payment.OrderNumber)
	assert.Equal(t, 1, tx.payment.PaymentMethodID)
	require.NotNil(t, order.Payment)
	assert.Equal(t, int64(9), order.Payment.PaymentID)
}

func TestSequencerCommit_ExactTotal(t *testing.T) {
	decisions := make([]Decision, 0, 10)
	for _, code := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		decisions = append(decisions, accepted(code, "0.10", 1))
	}

	for i := 0; i < 5; i++ {
		tx := &recordingTx{}
		_, err := NewSequencer(nil).Commit(context.Background(), tx, decisions, OrderParams{})
		require.NoError(t, err)
		assert.True(t, tx.payment.Amount.Equal(decimal.NewFromInt(1)), tx.payment.Amount.String())
	}
}

func TestSequencerCommit_PaymentRoundedToCents(t *testing.T) {
	tx := &recordingTx{}
	_, err := NewSequencer(nil).Commit(context.Background(), tx, []Decision{accepted("P1", "0.333", 1)}, OrderParams{})
	require.NoError(t, err)

	assert.Equal(t, "0.33", tx.payment.Amount.String())
}

func TestSequencerCommit_FailureStopsBeforeCommit(t *testing.T) {
	for _, step := range []string{"header", "line:P072", "decrement:P001", "payment", "commit"} {
		t.Run(step, func(t *testing.T) {
			tx := &recordingTx{failOn: step}

			_, err := NewSequencer(nil).Commit(context.Background(), tx, []Decision{
				accepted("P001", "1.00", 1),
				accepted("P072", "1.00", 1),
			}, OrderParams{})

			require.Error(t, err)
			assert.ErrorContains(t, err, step+" failed")
			assert.False(t, tx.committed)
			assert.Equal(t, step, tx.calls[len(tx.calls)-1])
		})
	}
}

func TestSequencerCommit_NothingAccepted(t *testing.T) {
	tx := &recordingTx{}
	_, err := NewSequencer(nil).Commit(context.Background(), tx, nil, OrderParams{})

	require.Error(t, err)
	assert.Empty(t, tx.calls)
}
