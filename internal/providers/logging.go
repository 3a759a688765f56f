package providers

import (
	"context"
	"log/slog"

	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
)

// logWithProvider emits a log entry through the request logger, falling back
// to the given one, and always includes the provider name.
func logWithProvider(ctx context.Context, logger *slog.Logger, level slog.Level, provider string, msg string, args ...any) {
	logger = logging.FromContext(ctx, logger)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldProvider, provider))
	logger.Log(ctx, level, msg, args...)
}
