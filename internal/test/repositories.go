package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// MerchantRepositoryStub stores merchants in-memory for tests.
type MerchantRepositoryStub struct {
	Merchants map[string]*model.Merchant
	ByID      map[int64]*model.Merchant
	Next      int64
	Err       error
}

// NewMerchantRepositoryStub constructs stub repository with initialized maps.
func NewMerchantRepositoryStub() *MerchantRepositoryStub {
	return &MerchantRepositoryStub{
		Merchants: make(map[string]*model.Merchant),
		ByID:      make(map[int64]*model.Merchant),
		Next:      1,
	}
}

// Create registers merchant unless already exists or stub has explicit error.
func (s *MerchantRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Merchant, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Merchants[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	merchant := &model.Merchant{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Merchants[login] = merchant
	s.ByID[merchant.ID] = merchant
	return merchant, nil
}

// GetByLogin returns stored merchant or ErrNotFound.
func (s *MerchantRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Merchant, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	merchant, ok := s.Merchants[login]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return merchant, nil
}

// GetByID returns stored merchant or ErrNotFound.
func (s *MerchantRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Merchant, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	merchant, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return merchant, nil
}

// OrderRepositoryStub keeps orders in-memory with the same compare-and-set
// paid transition the PostgreSQL storage guarantees, so reconciliation tests
// exercise realistic concurrency semantics.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	orders    map[int64]*model.Order
	byInvoice map[string]int64
	notes     map[int64][]string
	next      int64

	Err error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		orders:    make(map[int64]*model.Order),
		byInvoice: make(map[string]int64),
		notes:     make(map[int64][]string),
		next:      1,
	}
}

func (s *OrderRepositoryStub) key(merchantID int64, number string) string {
	return fmt.Sprintf("%d:%s", merchantID, number)
}

// Create stores a new order or returns the existing one for the same number.
func (s *OrderRepositoryStub) Create(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.MerchantID == draft.MerchantID && o.Number == draft.Number {
			cp := *o
			return &cp, false, nil
		}
	}

	order := &model.Order{
		ID:            s.next,
		MerchantID:    draft.MerchantID,
		Number:        draft.Number,
		Amount:        draft.Amount,
		ReceiverEmail: draft.ReceiverEmail,
		Description:   draft.Description,
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.next++
	s.orders[order.ID] = order
	cp := *order
	return &cp, true, nil
}

// GetByNumber returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.MerchantID == merchantID && o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByInvoiceID resolves an invoice id to its order.
func (s *OrderRepositoryStub) GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byInvoice[invoiceID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *s.orders[id]
	return &cp, nil
}

// ListByMerchant returns copies of all merchant orders.
func (s *OrderRepositoryStub) ListByMerchant(ctx context.Context, merchantID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.orders {
		if o.MerchantID == merchantID {
			result = append(result, *o)
		}
	}
	return result, nil
}

// AttachInvoice replaces the order's invoice and moves it to AWAITING_PAYMENT.
func (s *OrderRepositoryStub) AttachInvoice(ctx context.Context, orderID int64, invoice *model.Invoice) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.Invoice != nil {
		delete(s.byInvoice, order.Invoice.InvoiceID)
	}
	inv := *invoice
	order.Invoice = &inv
	s.byInvoice[invoice.InvoiceID] = orderID
	if order.Status != model.OrderStatusPaid {
		order.Status = model.OrderStatusAwaitingPayment
	}
	return nil
}

// MarkPaid performs the compare-and-set transition and records the note once.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, orderID int64, note string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusAwaitingPayment {
		return false, nil
	}
	now := time.Now()
	order.Status = model.OrderStatusPaid
	order.PaidAt = &now
	s.notes[orderID] = append(s.notes[orderID], note)
	return true, nil
}

// SelectAwaitingPayment returns invoiced orders pending confirmation.
func (s *OrderRepositoryStub) SelectAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.orders {
		if o.Status == model.OrderStatusAwaitingPayment && o.Invoice != nil {
			result = append(result, *o)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// Notes returns recorded notes for the order.
func (s *OrderRepositoryStub) Notes(orderID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes[orderID]...)
}
