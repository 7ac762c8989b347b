package components

import (
	"booklister/internal/handler"
	"booklister/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewPublishHandler,
		api.NewPolicyHandler,
	),
	fx.Invoke(handler.NewRouter),
)
