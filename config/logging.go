package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// InitLogging builds the application logger. Entries go to stdout and to a
// rotated log file; the standard logger is redirected into zap.
func InitLogging(cfg *Config) (*zap.Logger, func()) {
	level := zapcore.InfoLevel
	if !cfg.IsProduction() {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level),
	}
	closeFile := func() {}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
			log.Printf("Warning: Failed to create logs directory: %v", err)
		} else {
			rotator := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			}
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level))
			LogWriter = io.MultiWriter(os.Stdout, rotator)
			closeFile = func() { _ = rotator.Close() }
		}
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	restore := zap.RedirectStdLog(logger)
	return logger, func() {
		_ = logger.Sync()
		restore()
		closeFile()
	}
}
