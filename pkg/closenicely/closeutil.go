package closenicely

import (
	"context"
	"io"

	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"go.uber.org/zap"
)

// OrDebug closes the resource, logging any failure at debug level on the context's logger.
func OrDebug(ctx context.Context, closer io.Closer) {
	FuncOrDebug(ctx, closer.Close)
}

func FuncOrDebug(ctx context.Context, closer func() error) {
	if err := closer(); err != nil {
		logging.GetLogger(ctx).Debug("Failed to close resource", zap.Error(err))
	}
}
