// Package memstore is an in-process fulfillment.Store. Each product row
// carries its own lock, taken by LockAndFetch and held until the owning
// transaction commits or rolls back, so it serializes competing
// fulfillments the same way SELECT ... FOR UPDATE does.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

var (
	ErrRowNotLocked      = errors.New("row not locked by transaction")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTxDone            = errors.New("transaction has already been committed or rolled back")
)

type row struct {
	lock    chan struct{}
	product models.Product
}

type Store struct {
	mu          sync.Mutex
	rows        map[string]*row
	orders      map[int64]*models.Order
	nextOrder   int64
	nextPayment int64
}

func New(products ...models.Product) *Store {
	s := &Store{
		rows:   make(map[string]*row),
		orders: make(map[int64]*models.Order),
	}
	s.Seed(products...)
	return s
}

// Seed inserts products or overwrites existing rows. Overwriting a row
// waits for its lock, so a transaction holding the row keeps the values it
// locked until it commits or rolls back.
func (s *Store) Seed(products ...models.Product) {
	for _, p := range products {
		s.mu.Lock()
		r, ok := s.rows[p.ProductCode]
		if !ok {
			s.rows[p.ProductCode] = &row{lock: make(chan struct{}, 1), product: p}
		}
		s.mu.Unlock()
		if !ok {
			continue
		}

		r.lock <- struct{}{}
		s.mu.Lock()
		r.product = p
		s.mu.Unlock()
		<-r.lock
	}
}

func (s *Store) Product(code string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[code]
	if !ok {
		return models.Product{}, false
	}
	return r.product, true
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// GetByNumber returns a copy of a committed order, or nil if there is none.
func (s *Store) GetByNumber(_ context.Context, orderNumber int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (s *Store) BeginTx(ctx context.Context) (fulfillment.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{
		store:      s,
		locked:     make(map[string]*row),
		decrements: make(map[string]int),
	}, nil
}

type tx struct {
	store      *Store
	locked     map[string]*row
	decrements map[string]int
	header     *models.OrderHeader
	lines      []models.OrderLine
	payment    *models.Payment
	done       bool
}

func (t *tx) LockAndFetch(ctx context.Context, codes []string) (map[string]models.ProductSnapshot, error) {
	if t.done {
		return nil, ErrTxDone
	}

	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	out := make(map[string]models.ProductSnapshot, len(sorted))
	for _, code := range sorted {
		r := t.store.lookup(code)
		if r == nil {
			continue
		}

		if _, held := t.locked[code]; !held {
			select {
			case r.lock <- struct{}{}:
				t.locked[code] = r
			case <-ctx.Done():
				return nil, fmt.Errorf("lock %s: %w", code, ctx.Err())
			}
		}

		snap := t.store.snapshot(r)
		snap.QuantityInStock -= t.decrements[code]
		out[code] = snap
	}

	return out, nil
}

func (t *tx) DecrementStock(_ context.Context, productCode string, amount int) error {
	if t.done {
		return ErrTxDone
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %s by %d", fulfillment.ErrInvalidDecrement, productCode, amount)
	}
	r, held := t.locked[productCode]
	if !held {
		return fmt.Errorf("%w: %s", ErrRowNotLocked, productCode)
	}

	available := t.store.snapshot(r).QuantityInStock - t.decrements[productCode]
	if amount > available {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, productCode)
	}
	t.decrements[productCode] += amount
	return nil
}

func (t *tx) CreateOrderHeader(_ context.Context, header *models.OrderHeader) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	if t.header != nil {
		return 0, errors.New("order header already created in this transaction")
	}

	t.store.mu.Lock()
	t.store.nextOrder++
	number := t.store.nextOrder
	t.store.mu.Unlock()

	h := *header
	h.OrderNumber = number
	t.header = &h
	return number, nil
}

func (t *tx) CreateOrderLine(_ context.Context, line models.OrderLine) error {
	if t.done {
		return ErrTxDone
	}
	if t.header == nil || line.OrderNumber != t.header.OrderNumber {
		return fmt.Errorf("order %d does not exist", line.OrderNumber)
	}
	for _, l := range t.lines {
		if l.ProductCode == line.ProductCode {
			return fmt.Errorf("duplicate line for %s on order %d", line.ProductCode, line.OrderNumber)
		}
	}
	t.lines = append(t.lines, line)
	return nil
}

func (t *tx) CreatePayment(_ context.Context, payment *models.Payment) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	if t.header == nil || payment.OrderNumber != t.header.OrderNumber {
		return 0, fmt.Errorf("order %d does not exist", payment.OrderNumber)
	}

	t.store.mu.Lock()
	t.store.nextPayment++
	id := t.store.nextPayment
	t.store.mu.Unlock()

	p := *payment
	p.PaymentID = id
	t.payment = &p
	return id, nil
}

func (t *tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, amount := range t.decrements {
		if t.locked[code].product.QuantityInStock < amount {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, code)
		}
	}
	for code, amount := range t.decrements {
		t.locked[code].product.QuantityInStock -= amount
	}

	if t.header != nil {
		s.orders[t.header.OrderNumber] = &models.Order{
			Header:  *t.header,
			Lines:   t.lines,
			Payment: t.payment,
		}
	}
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *tx) release() {
	for code, r := range t.locked {
		<-r.lock
		delete(t.locked, code)
	}
}

func (s *Store) lookup(code string) *row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[code]
}

func (s *Store) snapshot(r *row) models.ProductSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.product.Snapshot()
}

func copyOrder(o *models.Order) *models.Order {
	c := &models.Order{
		Header: o.Header,
		Lines:  append([]models.OrderLine(nil), o.Lines...),
	}
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	return c
}
