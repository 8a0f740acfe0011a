package logger

import (
	"context"

	"go.uber.org/zap"
)

// ContextFieldExtractor 从 context 提取字段的函数类型
type ContextFieldExtractor func(ctx context.Context) []zap.Field

type ctxKey int

const (
	frameKey ctxKey = iota
	behaviorKey
)

// WithFrame 在 context 中记录当前帧序号
func WithFrame(ctx context.Context, frame uint64) context.Context {
	return context.WithValue(ctx, frameKey, frame)
}

// WithBehavior 在 context 中记录当前运行的行为
func WithBehavior(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, behaviorKey, name)
}

// DefaultContextExtractor 提取帧序号与行为名称
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if frame, ok := ctx.Value(frameKey).(uint64); ok {
		fields = append(fields, zap.Uint64("frame", frame))
	}
	if name, ok := ctx.Value(behaviorKey).(string); ok {
		fields = append(fields, zap.String("behavior", name))
	}
	return fields
}
