package s3

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Module provides S3/MinIO client for FX
var Module = fx.Module("s3",
	fx.Provide(NewClient),
	fx.Invoke(registerLifecycle),
)

type lifecycleParams struct {
	fx.In

	LC     fx.Lifecycle
	Client *Client
	Logger zerolog.Logger
}

func registerLifecycle(p lifecycleParams) {
	if p.Client == nil {
		return
	}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info().Msg("initializing S3/MinIO client...")
			if err := p.Client.EnsureBucket(ctx); err != nil {
				return err
			}
			p.Logger.Info().Msg("S3/MinIO client initialized successfully")
			return nil
		},
	})
}
