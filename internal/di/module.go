package di

import (
	"go.uber.org/fx"

	"github.com/ganzorig/qpaygate/internal/adapter/qpay"
	"github.com/ganzorig/qpaygate/internal/app"
	"github.com/ganzorig/qpaygate/internal/config"
	"github.com/ganzorig/qpaygate/internal/logger"
	"github.com/ganzorig/qpaygate/internal/pkg/auth"
	"github.com/ganzorig/qpaygate/internal/server/http/handlers"
	"github.com/ganzorig/qpaygate/internal/server/http/router"
	"github.com/ganzorig/qpaygate/internal/storage/postgres"
	"github.com/ganzorig/qpaygate/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		qpay.Module,
		usecase.Module,
		fx.Provide(func(f *app.GatewayFacade) handlers.GatewayFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
