package sentry

import (
	"strings"

	"github.com/getsentry/sentry-go"
)

// Level 事件级别，取值与配置文件中的写法一致
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

var sdkLevels = map[Level]sentry.Level{
	LevelDebug:   sentry.LevelDebug,
	LevelInfo:    sentry.LevelInfo,
	LevelWarning: sentry.LevelWarning,
	LevelError:   sentry.LevelError,
	LevelFatal:   sentry.LevelFatal,
}

// ParseLevel 解析级别名称，"warn" 视为 warning，无法识别时返回 error
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l == "warn" {
		return LevelWarning
	}
	if _, ok := sdkLevels[l]; !ok {
		return LevelError
	}
	return l
}

func (l Level) sdk() sentry.Level {
	if v, ok := sdkLevels[l]; ok {
		return v
	}
	return sentry.LevelError
}

// Stats 上报计数
// 事件被 BeforeSend 丢弃或采样未命中时计入 EventsDropped
type Stats struct {
	EventsTotal    uint64
	EventsCaptured uint64
	EventsDropped  uint64
}
