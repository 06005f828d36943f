package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	testhelpers "github.com/ganzorig/qpaygate/internal/test"
)

func TestOrderRegisterValidation(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	repo.Err = errors.New("repository must not be reached")
	uc := NewOrderUseCase(repo)

	cases := []struct {
		name  string
		draft model.OrderDraft
		want  error
	}{
		{name: "empty number", draft: model.OrderDraft{MerchantID: 1, Number: "  ", Amount: 100}, want: domainErrors.ErrInvalidOrderNumber},
		{name: "zero amount", draft: model.OrderDraft{MerchantID: 1, Number: "order-1", Amount: 0}, want: domainErrors.ErrInvalidAmount},
		{name: "negative amount", draft: model.OrderDraft{MerchantID: 1, Number: "order-1", Amount: -5}, want: domainErrors.ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Register(context.Background(), tc.draft); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOrderRegisterTrimsNumber(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := NewOrderUseCase(repo)

	order, created, err := uc.Register(context.Background(), model.OrderDraft{MerchantID: 1, Number: "  order-1  ", Amount: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected order to be created")
	}
	if order.Number != "order-1" {
		t.Fatalf("expected trimmed number, got %q", order.Number)
	}
	if order.Status != model.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
}

func TestOrderRegisterIdempotent(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := NewOrderUseCase(repo)

	first, created, err := uc.Register(context.Background(), model.OrderDraft{MerchantID: 1, Number: "order-1", Amount: 500})
	if err != nil || !created {
		t.Fatalf("unexpected first registration: created=%v err=%v", created, err)
	}

	second, created, err := uc.Register(context.Background(), model.OrderDraft{MerchantID: 1, Number: "order-1", Amount: 900})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected existing order to be returned")
	}
	if second.ID != first.ID || second.Amount != first.Amount {
		t.Fatalf("expected original order back, got %+v", second)
	}

	// Same number under a different merchant is a distinct order.
	_, created, err = uc.Register(context.Background(), model.OrderDraft{MerchantID: 2, Number: "order-1", Amount: 500})
	if err != nil || !created {
		t.Fatalf("expected separate order per merchant: created=%v err=%v", created, err)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	uc := NewOrderUseCase(testhelpers.NewOrderRepositoryStub())

	if _, err := uc.Get(context.Background(), 1, "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrderSelectAwaitingPayment(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := NewOrderUseCase(repo)

	pending, _, err := uc.Register(context.Background(), model.OrderDraft{MerchantID: 1, Number: "order-1", Amount: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoiced, _, err := uc.Register(context.Background(), model.OrderDraft{MerchantID: 1, Number: "order-2", Amount: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.AttachInvoice(context.Background(), invoiced.ID, &model.Invoice{OrderID: invoiced.ID, InvoiceID: "inv-2"}); err != nil {
		t.Fatalf("failed to attach invoice: %v", err)
	}

	batch, err := uc.SelectAwaitingPayment(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != invoiced.ID {
		t.Fatalf("expected only the invoiced order, got %+v", batch)
	}
	if batch[0].ID == pending.ID {
		t.Fatal("pending order must not be selected")
	}
}
