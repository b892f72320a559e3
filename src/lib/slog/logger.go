package slog

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	config *Config
	logger *zap.Logger
	mux    sync.Mutex
)

// Config allows slog to be configured.
type Config struct {
	Disabled bool
	Colorful bool
	JSON     bool
}

// getConfig is a helper function to return the current config.
func getConfig() *Config {
	if config == nil {
		config = &Config{
			Disabled: strings.Contains(os.Args[0], "_test") || strings.Contains(os.Args[0], ".test"),
			JSON:     os.Getenv("LOG_FORMAT") == "json",
		}
	}

	return config
}

// getLogger returns a configured zap logger instance
func getLogger() *zap.Logger {
	mux.Lock()
	defer mux.Unlock()

	if logger == nil {
		cfg := getConfig()

		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		if cfg.Colorful && !cfg.JSON {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		level := zapcore.InfoLevel

		if debug := os.Getenv("DEBUG"); debug != "" {
			level = zapcore.DebugLevel
		}

		encoder := zapcore.NewConsoleEncoder(encoderConfig)

		if cfg.JSON {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		}

		core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

		if cfg.Disabled {
			core = zapcore.NewNopCore()
		}

		logger = zap.New(core, zap.AddCallerSkip(1))
	}

	return logger
}

// SetConfig sets the configuration for slog.
func SetConfig(conf *Config) {
	mux.Lock()
	defer mux.Unlock()

	config = conf
	// Reset logger to pick up new config
	logger = nil
}

// Sync flushes any buffered log entries.
func Sync() error {
	return getLogger().Sync()
}

const DL1 = 1 // Debug level 1 is used for general debug messages.
const DL2 = 2 // Debug level 2 is used for more detailed debug messages, such as function calls and variable values.
const DL3 = 3 // Debug level 3 is used for noisy messages, such as request and response logging.

type LogOpts struct {
	Msg     string
	MsgArgs []any
	Payload []zap.Field
	Level   int
}

// Debug logs debug level stuff.
func Debug(opts LogOpts) {
	msg := opts.Msg
	level := opts.Level

	if len(opts.MsgArgs) > 0 {
		msg = fmt.Sprintf(msg, opts.MsgArgs...)
	}

	debug := os.Getenv("DEBUG")

	// Debugging is disabled
	if debug == "" {
		return
	}

	debugLevel, _ := strconv.Atoi(debug)

	// Debugging is enabled, but the level is not sufficient
	if debugLevel > 0 && level > debugLevel {
		return
	} else if debugLevel == 0 && debug != "TRUE" {
		return
	}

	getLogger().Debug(msg, opts.Payload...)
}

// Info logs info level stuff.
func Info(v ...any) {
	getLogger().Info(fmt.Sprint(v...))
}

// Infof accepts a formatted string and calls Info function.
func Infof(msg string, args ...any) {
	Info(fmt.Sprintf(msg, args...))
}

// InfoFields logs a message with structured payload.
func InfoFields(msg string, fields ...zap.Field) {
	getLogger().Info(msg, fields...)
}

// Warnf logs a formatted warning.
func Warnf(msg string, args ...any) {
	getLogger().Warn(fmt.Sprintf(msg, args...))
}

// Error logs error level stuff.
func Error(v ...any) {
	_, file, no, ok := runtime.Caller(1)

	// caller is Errorf go one step deeper
	if strings.HasSuffix(file, "logger.go") {
		_, file, no, ok = runtime.Caller(2)
	}

	msg := fmt.Sprint(v...)

	fields := []zap.Field{}

	if ok {
		fields = append(fields, zap.String("caller", fmt.Sprintf("%s#%d", file, no)))
	}

	getLogger().Error(msg, fields...)
}

// Errorf accepts a formatted string and calls Error function.
func Errorf(msg string, args ...any) {
	Error(fmt.Sprintf(msg, args...))
}

// ErrorFields logs an error message with structured payload.
func ErrorFields(msg string, fields ...zap.Field) {
	getLogger().Error(msg, fields...)
}
