// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 初始化全局日志器，并打上服务名标签。
// 应在进程启动时调用一次。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	root = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger returns the process-wide root logger.
func Logger() *zerolog.Logger {
	return &root
}

// Ctx 返回一个携带链路信息的日志器。
// 如果上下文中存在有效的 Span，自动附加 trace_id / span_id 字段，
// 便于在日志系统中与 Jaeger 链路互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &root
	}
	l := root.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
