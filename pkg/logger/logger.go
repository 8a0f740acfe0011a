package logger

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

var _ Logger = (*BaseLogger)(nil)

var zapLevels = map[Level]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
	PanicLevel: zapcore.PanicLevel,
	FatalLevel: zapcore.FatalLevel,
}

func toZapLevel(l Level) zapcore.Level {
	if zl, ok := zapLevels[l]; ok {
		return zl
	}
	return zapcore.InfoLevel
}

// BaseLogger zap 实现
type BaseLogger struct {
	*zap.Logger
	config           *Config
	name             string
	globalFields     map[string]interface{}
	contextExtractor ContextFieldExtractor
}

// New 创建日志，cfg 中未设置的项使用 DefaultConfig
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge logger config")
	}

	l := &BaseLogger{
		config:           merged,
		globalFields:     make(map[string]interface{}, len(merged.GlobalFields)),
		contextExtractor: DefaultContextExtractor,
	}
	for k, v := range merged.GlobalFields {
		l.globalFields[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	core, err := l.newCore()
	if err != nil {
		return nil, err
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if merged.EnableStacktrace {
		zopts = append(zopts, zap.AddStacktrace(toZapLevel(merged.StacktraceLevel)))
	}
	if merged.Development {
		zopts = append(zopts, zap.Development())
	}

	zl := zap.New(core, zopts...)
	if len(l.globalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.globalFields))
		for k, v := range l.globalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	l.Logger = zl
	return l, nil
}

func (l *BaseLogger) newCore() (zapcore.Core, error) {
	enc := l.encoderConfig()
	var encoder zapcore.Encoder
	if l.config.Format == ConsoleFormat {
		encoder = zapcore.NewConsoleEncoder(enc)
	} else {
		encoder = zapcore.NewJSONEncoder(enc)
	}

	var sinks []zapcore.WriteSyncer
	if l.config.EnableConsole {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if l.config.EnableFile {
		w, err := NewRotationWriter(&l.config.Rotation, l.config.OutputPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, zapcore.AddSync(w))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), toZapLevel(l.config.Level))
	if l.config.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, l.config.SamplingInitial, l.config.SamplingThereafter)
	}
	return core, nil
}

func (l *BaseLogger) encoderConfig() zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if l.config.TimeFormat != "" {
		enc.EncodeTime = zapcore.TimeEncoderOfLayout(l.config.TimeFormat)
	}
	if l.config.Development {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return enc
}

func (l *BaseLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.logContext(ctx, zapcore.DebugLevel, msg, keysAndValues)
}

func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.logContext(ctx, zapcore.InfoLevel, msg, keysAndValues)
}

func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.logContext(ctx, zapcore.WarnLevel, msg, keysAndValues)
}

func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.logContext(ctx, zapcore.ErrorLevel, msg, keysAndValues)
}

// logContext 与 Debug 等方法保持相同的调用栈深度，caller 才能指向业务代码
func (l *BaseLogger) logContext(ctx context.Context, lvl zapcore.Level, msg string, keysAndValues []interface{}) {
	ce := l.Logger.WithOptions(zap.AddCallerSkip(1)).Check(lvl, msg)
	if ce == nil {
		return
	}
	fields := append(l.contextExtractor(ctx), toFields(keysAndValues)...)
	ce.Write(fields...)
}

// Named 派生具名日志
func (l *BaseLogger) Named(name string) Logger {
	return l.derive(l.Logger.Named(name), name)
}

// WithFields 派生带固定字段的日志
func (l *BaseLogger) WithFields(keysAndValues ...interface{}) Logger {
	fields := toFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	return l.derive(l.Logger.With(fields...), l.name)
}

func (l *BaseLogger) derive(zl *zap.Logger, name string) *BaseLogger {
	return &BaseLogger{
		Logger:           zl,
		config:           l.config,
		name:             name,
		globalFields:     l.globalFields,
		contextExtractor: l.contextExtractor,
	}
}

// Sync 刷新缓冲
func (l *BaseLogger) Sync() error {
	return l.Logger.Sync()
}

// toFields 把交替的键值转换为 zap 字段
// 也接受直接传入的 zap.Field；非字符串键与落单的键被丢弃
func toFields(kv []interface{}) []zap.Field {
	if len(kv) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(kv)/2+1)
	for i := 0; i < len(kv); i++ {
		if f, ok := kv[i].(zap.Field); ok {
			fields = append(fields, f)
			continue
		}
		if i+1 >= len(kv) {
			break
		}
		key, ok := kv[i].(string)
		val := kv[i+1]
		i++
		if !ok {
			continue
		}
		if err, isErr := val.(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, val))
	}
	return fields
}
