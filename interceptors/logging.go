package interceptors

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// InterceptorLogger adapts a zap logger to the logging middleware.
func InterceptorLogger(l *zap.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		// fields arrive as alternating key/value pairs; a trailing odd key is dropped
		zapFields := make([]zap.Field, 0, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			key, ok := fields[i].(string)
			if !ok {
				// Non-string keys cannot become zap field names
				continue
			}
			zapFields = append(zapFields, zap.Any(key, fields[i+1]))
		}

		// Map middleware levels onto zap levels
		switch lvl {
		case logging.LevelDebug:
			l.Debug(msg, zapFields...)
		case logging.LevelInfo:
			l.Info(msg, zapFields...)
		case logging.LevelWarn:
			l.Warn(msg, zapFields...)
		case logging.LevelError:
			l.Error(msg, zapFields...)
		default:
			l.Error("Unknown log level in interceptor", zap.String("original_msg", msg), zap.Any("level", lvl))
		}
	})
}

// ZapLoggingInterceptor logs the start and finish of every unary call.
func ZapLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	opts := []logging.Option{
		logging.WithLogOnEvents(logging.StartCall, logging.FinishCall), // Authorization checks are short; log both ends
		logging.WithLevels(logging.DefaultServerCodeToLevel),           // Denied and invalid calls surface as warnings
	}

	// The logger runs before the auth interceptor, so it never sees the caller's identity
	return logging.UnaryServerInterceptor(InterceptorLogger(logger), opts...)
}
