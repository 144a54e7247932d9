package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// gameLog records game events (rooms created, clues found, cases solved)
// to a rotating file when --log-file is set. Defaults to a no-op so call
// sites never need a nil check.
var gameLog = zap.NewNop().Sugar()

func initGameLog(cfg *Config) error {
	if cfg.logFile == "" {
		return nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(lj), zapcore.InfoLevel)
	gameLog = zap.New(core).Sugar()

	return nil
}

func syncGameLog() {
	_ = gameLog.Sync()
}
