// Package logger 基于 zap 的键值对日志
//
// 调用方传入交替的键和值，例如 l.Info("cast", "spell", name, "target", guid)。
// 落单的键会被丢弃
package logger

import "context"

// Logger 日志接口
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// Context 版本额外记录 ctx 中的字段，见 ContextFieldExtractor
	DebugContext(ctx context.Context, msg string, keysAndValues ...interface{})
	InfoContext(ctx context.Context, msg string, keysAndValues ...interface{})
	WarnContext(ctx context.Context, msg string, keysAndValues ...interface{})
	ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{})

	// Named 派生子日志，名称以 "." 连接
	Named(name string) Logger
	// WithFields 派生附带固定字段的日志
	WithFields(keysAndValues ...interface{}) Logger

	Sync() error
}
