package components

import (
	"booklister/internal/pkg/config"
	"booklister/internal/usecase/commands"
	"booklister/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewPublishCommands,
		NewPolicyCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		NewPublishQueries,
		NewPolicyQueries,
	),
)

func NewPublishQueries(books queries.BookReadStore, cfg config.Config) queries.PublishQueries {
	return queries.NewPublishQueries(books, cfg.Ebay)
}

func NewPublishCommands(
	books commands.BookRepository,
	policies commands.PolicyResolver,
	images commands.ImageResolver,
	upstream commands.UpstreamClient,
	cfg config.Config,
) commands.PublishCommands {
	return commands.NewPublishUseCase(books, policies, images, upstream, cfg.Ebay)
}

func NewPolicyCommands(store commands.PolicyWriter, catalog commands.PolicyCatalog, cfg config.Config) commands.PolicyCommands {
	return commands.NewPolicyUseCase(store, catalog, cfg.Ebay.Marketplace)
}

func NewPolicyQueries(store queries.PolicyReadStore, cfg config.Config) queries.PolicyQueries {
	return queries.NewPolicyQueries(store, cfg.Ebay.Marketplace)
}
