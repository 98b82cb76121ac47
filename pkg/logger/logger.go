package logger

import (
	"os"

	"builderboard/conf"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 全局日志，基于 zap + lumberjack 滚动切割
// 未调用 Init 时输出到控制台，方便单测和本地调试

var l *zap.Logger = zap.Must(zap.NewDevelopment(zap.AddCallerSkip(1)))

type Field = zap.Field

// Pair 构造一个结构化字段
func Pair(key string, value interface{}) Field {
	return zap.Any(key, value)
}

// Init 根据配置初始化全局日志
func Init(cfg conf.LogConfig) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	if cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	} else {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	encoder := zapcore.NewJSONEncoder(encCfg)

	var cores []zapcore.Core
	if cfg.FileName != "" {
		// 日志文件滚动切割
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		})
		cores = append(cores, zapcore.NewCore(encoder, w, level))
	}
	if cfg.Console || cfg.FileName == "" {
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))
	}

	l = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func Sync() {
	_ = l.Sync()
}

func Debug(msg string, fields ...Field) {
	l.Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	l.Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	l.Warn(msg, fields...)
}

func Error(msg string, fields ...Field) {
	l.Error(msg, fields...)
}

func Fatal(msg string, fields ...Field) {
	l.Fatal(msg, fields...)
}

func Debugf(format string, args ...interface{}) {
	l.Sugar().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	l.Sugar().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	l.Sugar().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	l.Sugar().Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	l.Sugar().Fatalf(format, args...)
}
