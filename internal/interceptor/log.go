package interceptor

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LogInterceptor логирует сведения о выполненных gRPC вызовах.
type LogInterceptor struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogInterceptor {
	return &LogInterceptor{logger: logger}
}

//nolint:lll // default interceptor func type
func (i *LogInterceptor) Handle(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	i.logger.Info("",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("duration", time.Since(start)),
	)

	return resp, err
}
