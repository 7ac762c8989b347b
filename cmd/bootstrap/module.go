package bootstrap

import (
	"booklister/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	EbayModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
