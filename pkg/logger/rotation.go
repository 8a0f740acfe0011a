package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotationWriter 创建带轮换的文件 writer，目录不存在时自动创建
func NewRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create log directory for %s", outputPath)
	}

	switch cfg.Type {
	case RotationBySize, "":
		return &lumberjack.Logger{
			Filename:   outputPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}, nil
	case RotationByTime:
		return newTimeRotationWriter(cfg, outputPath)
	default:
		return nil, errors.Wrapf(ErrUnknownRotation, "%q", cfg.Type)
	}
}

func newTimeRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	rotationTime := cfg.RotationTime
	if rotationTime <= 0 {
		rotationTime = 24 * time.Hour
	}
	maxAge := cfg.MaxAgeTime
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	pattern := cfg.RotationPattern
	if pattern == "" {
		pattern = ".%Y%m%d%H"
	}

	w, err := rotatelogs.New(
		outputPath+pattern,
		rotatelogs.WithLinkName(outputPath),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create time rotation writer")
	}
	return w, nil
}
