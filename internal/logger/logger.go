// Package logger wraps zerolog with the application's log settings.
package logger

import (
	"io"
	"os"
	"time"

	"tankobon/internal/domain"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Log() *zerolog.Event
	Fatal() *zerolog.Event
	Error() *zerolog.Event
	Warn() *zerolog.Event
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Trace() *zerolog.Event
	With() zerolog.Context
	SetLogLevel(level string)
}

type DefaultLogger struct {
	log     zerolog.Logger
	level   zerolog.Level
	writers []io.Writer
}

func New(cfg *domain.Config) Logger {
	l := &DefaultLogger{
		writers: make([]io.Writer, 0),
		level:   zerolog.DebugLevel,
	}

	if cfg.LogPath != "" {
		l.writers = append(l.writers, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
		})
	} else {
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.DateTime,
		})
	}

	l.SetLogLevel(cfg.LogLevel)
	l.log = zerolog.New(io.MultiWriter(l.writers...)).With().Timestamp().Logger()

	return l
}

// SetLogLevel applies a level name; unknown names fall back to debug.
func (l *DefaultLogger) SetLogLevel(level string) {
	switch level {
	case "TRACE":
		l.level = zerolog.TraceLevel
	case "DEBUG":
		l.level = zerolog.DebugLevel
	case "INFO":
		l.level = zerolog.InfoLevel
	case "WARN":
		l.level = zerolog.WarnLevel
	case "ERROR":
		l.level = zerolog.ErrorLevel
	default:
		l.level = zerolog.DebugLevel
	}

	l.log = l.log.Level(l.level)
}

func (l *DefaultLogger) Log() *zerolog.Event {
	return l.log.Log()
}

func (l *DefaultLogger) Fatal() *zerolog.Event {
	return l.log.Fatal()
}

func (l *DefaultLogger) Error() *zerolog.Event {
	return l.log.Error()
}

func (l *DefaultLogger) Warn() *zerolog.Event {
	return l.log.Warn()
}

func (l *DefaultLogger) Info() *zerolog.Event {
	return l.log.Info()
}

func (l *DefaultLogger) Debug() *zerolog.Event {
	return l.log.Debug()
}

func (l *DefaultLogger) Trace() *zerolog.Event {
	return l.log.Trace()
}

func (l *DefaultLogger) With() zerolog.Context {
	return l.log.With()
}
