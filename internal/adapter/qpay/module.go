package qpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ganzorig/qpaygate/internal/config"
)

// Module exposes the QPay client implementation to fx graph.
var Module = fx.Options(
	fx.Provide(NewTokenCache),
	fx.Provide(newClient),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Tokens *TokenCache
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	creds := Credentials{
		Username: p.Config.QPayUsername,
		Password: p.Config.QPayPassword,
	}
	return NewHTTPClient(p.Config.QPayBaseURL, creds, p.Tokens, p.Logger)
}
