package driver

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the driver package. It provides the
// Client and ties its disposal to application shutdown.
var FXModule = fx.Module("driver",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterClientLifecycle),
)

// RegisterClientLifecycle disposes the client when the application stops,
// which forcefully disconnects any attachment left open.
func RegisterClientLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Dispose(ctx)
		},
	})
}
