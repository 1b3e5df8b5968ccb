// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// Logger contains the config items for logger
	Logger struct {
		// Stdout is true then the output needs to goto standard out
		// By default this is false and output will go to standard error
		Stdout bool `yaml:"stdout"`
		// Level is the desired log level, one of debug, info, warn, error or fatal. Default is info
		Level string `yaml:"level"`
		// OutputFile is the path to the log output file
		// Stdout must be false, otherwise Stdout will take precedence
		OutputFile string `yaml:"outputFile"`
		// LevelKey is the desired log level, defaults to "level"
		LevelKey string `yaml:"levelKey"`
		// Encoding decides the format, supports "console" and "json".
		// "json" will print the log in JSON format(better for machine), while "console" will print in plain-text format(more human friendly)
		// Default is "json"
		Encoding string `yaml:"encoding"`
		// Sampling optionally limits repeated entries, e.g. the per attempt logs
		// of many concurrent poll loops
		Sampling *LogSampling `yaml:"sampling"`
	}

	// LogSampling keeps the first Initial entries with the same level and message
	// every second, then every Thereafter-th one
	LogSampling struct {
		Initial    int `yaml:"initial"`
		Thereafter int `yaml:"thereafter"`
	}
)

// NewZapLogger builds and returns a new
// Zap logger for this logging configuration
func (cfg *Logger) NewZapLogger() (*zap.Logger, error) {
	level, err := parseZapLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	levelKey := cfg.LevelKey
	if levelKey == "" {
		levelKey = "level"
	}

	encodeConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       levelKey,
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	outputPath := "stderr"
	switch {
	case cfg.Stdout:
		outputPath = "stdout"
	case cfg.OutputFile != "":
		outputPath = cfg.OutputFile
	}

	encoding := "json"
	switch cfg.Encoding {
	case "":
	case "json", "console":
		encoding = cfg.Encoding
	default:
		return nil, fmt.Errorf("invalid encoding %q for log, only supporting json or console", cfg.Encoding)
	}

	var sampling *zap.SamplingConfig
	if cfg.Sampling != nil {
		sampling = &zap.SamplingConfig{
			Initial:    cfg.Sampling.Initial,
			Thereafter: cfg.Sampling.Thereafter,
		}
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Sampling:         sampling,
		Encoding:         encoding,
		EncoderConfig:    encodeConfig,
		OutputPaths:      []string{outputPath},
		ErrorOutputPaths: []string{outputPath},
		InitialFields:    map[string]interface{}{"app": "auditflow"},
	}
	return config.Build()
}

func parseZapLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zap.InfoLevel, nil
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return parsed, nil
}
