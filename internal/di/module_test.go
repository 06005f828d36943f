package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/ganzorig/qpaygate/internal/adapter/qpay"
	"github.com/ganzorig/qpaygate/internal/app"
	"github.com/ganzorig/qpaygate/internal/config"
	"github.com/ganzorig/qpaygate/internal/domain/repository"
	"github.com/ganzorig/qpaygate/internal/storage/postgres"
	"github.com/ganzorig/qpaygate/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		AuthSecret:      "secret",
		QPayBaseURL:     "https://merchant.qpay.mn",
		QPayUsername:    "merchant",
		QPayPassword:    "secret",
		QPayInvoiceCode: "SHOP_INVOICE",
		CallbackURL:     "https://shop.example/api/qpay/webhook",
		PollInterval:    time.Millisecond,
		WorkerPoolSize:  1,
		ShutdownTimeout: time.Millisecond,
		MaxOrdersBatch:  1,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	merchantRepo := test.NewMerchantRepositoryStub()
	orderRepo := test.NewOrderRepositoryStub()

	var facade *app.GatewayFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.MerchantRepository(merchantRepo)),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(qpay.Client(test.QPayClientStub{})),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected gateway facade instance")
	}
}
