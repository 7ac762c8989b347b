package components

import (
	"booklister/internal/infra/bookstore"
	"booklister/internal/infra/imageresolver"
	"booklister/internal/infra/policystore"
	"booklister/internal/pkg/clock"
	"booklister/internal/pkg/config"
	"booklister/internal/usecase/commands"
	"booklister/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		clock.NewRealClock,
		fx.Annotate(
			bookstore.New,
			fx.As(new(commands.BookRepository)),
			fx.As(new(queries.BookReadStore)),
		),
		fx.Annotate(
			policystore.New,
			fx.As(new(commands.PolicyResolver)),
			fx.As(new(commands.PolicyWriter)),
			fx.As(new(queries.PolicyReadStore)),
		),
		fx.Annotate(
			NewImageResolver,
			fx.As(new(commands.ImageResolver)),
		),
	),
)

func NewImageResolver(cfg config.Config) (*imageresolver.Resolver, error) {
	return imageresolver.New(cfg.Images)
}
