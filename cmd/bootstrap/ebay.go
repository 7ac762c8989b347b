package bootstrap

import (
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/backoff"
	"booklister/internal/pkg/clock"
	"booklister/internal/pkg/config"
	"booklister/internal/usecase/commands"

	"go.uber.org/fx"
)

var EbayModule = fx.Module("ebay",
	fx.Provide(
		NewTokenProvider,
		NewTracer,
		fx.Annotate(
			NewUpstreamClient,
			fx.As(new(commands.UpstreamClient)),
			fx.As(new(commands.PolicyCatalog)),
		),
	),
)

func NewTokenProvider(cfg config.Config) ebay.TokenProvider {
	return ebay.NewStaticTokenProvider(cfg.Ebay)
}

func NewTracer(cfg config.Config, clk clock.Clock) ebay.Tracer {
	if cfg.Ebay.TraceDir == "" {
		return ebay.NopTracer{}
	}
	return ebay.NewFileTracer(cfg.Ebay.TraceDir, clk)
}

func NewUpstreamClient(cfg config.Config, tokens ebay.TokenProvider, tracer ebay.Tracer) *ebay.Client {
	return ebay.NewClient(cfg.Ebay, tokens, backoff.Default(), tracer)
}
