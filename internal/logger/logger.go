package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var (
	ctxKey = loggerKey{}
)

type loggerKey struct{}

type handler int

const (
	JSONHandler handler = iota
	TextHandler
	DevHandler
)

// Levels follow the syslog ladder, with Trace added below Debug.
const (
	DefaultLevel = LevelWarning

	LevelTrace     = slog.Level(-8)
	LevelDebug     = slog.LevelDebug
	LevelInfo      = slog.LevelInfo
	LevelNotice    = slog.Level(2)
	LevelWarning   = slog.LevelWarn
	LevelError     = slog.LevelError
	LevelCritical  = slog.Level(10)
	LevelAlert     = slog.Level(11)
	LevelEmergency = slog.Level(12)
)

type Logger interface {
	Debug(msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	Info(msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	Warn(msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	Error(msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	Handler() slog.Handler
	Level() slog.Level
	With(args ...any) Logger

	Trace(msg string, args ...any)
	Notice(msg string, args ...any)
	Critical(msg string, args ...any)
	Alert(msg string, args ...any)
	Emergency(msg string, args ...any)
	SLog() *slog.Logger
}

type LoggerOpt func(o *loggerOpts)

type loggerOpts struct {
	writer  io.Writer
	level   slog.Level
	handler handler
}

func WithLoggerLevel(lvl slog.Level) LoggerOpt {
	return func(o *loggerOpts) {
		o.level = lvl
	}
}

func WithLoggerWriter(w io.Writer) LoggerOpt {
	return func(o *loggerOpts) {
		o.writer = w
	}
}

func WithHandler(h handler) LoggerOpt {
	return func(o *loggerOpts) {
		o.handler = h
	}
}

// levelNames maps the added levels to their syslog names.
var levelNames = map[slog.Level]string{
	LevelTrace:     "TRACE",
	LevelNotice:    "NOTICE",
	LevelCritical:  "CRIT",
	LevelAlert:     "ALERT",
	LevelEmergency: "EMERG",
}

func newLogger(opts ...LoggerOpt) Logger {
	o := &loggerOpts{
		level:   ParseLevel(os.Getenv("LOG_LEVEL")),
		writer:  os.Stderr,
		handler: defaultHandler(os.Getenv("LOG_HANDLER"), os.Stderr),
	}

	for _, apply := range opts {
		apply(o)
	}

	hopts := slog.HandlerOptions{
		AddSource: true,
		Level:     o.level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := attr.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						return slog.String(attr.Key, name)
					}
				}
			}
			return attr
		},
	}

	switch o.handler {
	case DevHandler:
		return &logger{
			Logger: slog.New(tint.NewHandler(o.writer, &tint.Options{
				AddSource:  true,
				Level:      o.level,
				TimeFormat: "[15:04:05.000]",
				ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
					if a.Key == slog.LevelKey && len(groups) == 0 {
						lvl, ok := a.Value.Any().(slog.Level)
						if ok {
							// keep default color for warn and error
							switch lvl {
							case LevelTrace:
								return tint.Attr(13, slog.String(a.Key, "TRC"))
							case LevelDebug:
								return tint.Attr(3, slog.String(a.Key, "DBG"))
							case LevelInfo:
								return tint.Attr(14, slog.String(a.Key, "INF"))
							case LevelNotice:
								return tint.Attr(10, slog.String(a.Key, "NTC"))
							case LevelCritical:
								return tint.Attr(9, slog.String(a.Key, "CRT"))
							case LevelAlert:
								return tint.Attr(9, slog.String(a.Key, "ALR"))
							case LevelEmergency:
								return tint.Attr(9, slog.String(a.Key, "EMR"))
							}
						}
					}
					return a
				},
			})),
			level: o.level,
		}

	case TextHandler:
		return &logger{
			Logger: slog.New(slog.NewTextHandler(o.writer, &hopts)),
			level:  o.level,
		}

	default:
		return &logger{
			Logger: slog.New(slog.NewJSONHandler(o.writer, &hopts)),
			level:  o.level,
		}
	}
}

// defaultHandler honours LOG_HANDLER, falling back to the dev handler on a
// terminal and JSON everywhere else.
func defaultHandler(name string, f *os.File) handler {
	switch strings.ToLower(name) {
	case "json":
		return JSONHandler
	case "dev":
		return DevHandler
	case "txt", "text":
		return TextHandler
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return DevHandler
	}
	return JSONHandler
}

// From returns the logger stored in ctx, or a new logger if none is stored.
func From(ctx context.Context, opts ...LoggerOpt) Logger {
	l := ctx.Value(ctxKey)
	if l == nil {
		return newLogger(opts...)
	}
	return l.(Logger)
}

// New builds a logger from the environment and opts.
func New(opts ...LoggerOpt) Logger {
	return newLogger(opts...)
}

// VoidLogger discards every record. It does not consult the environment.
func VoidLogger() Logger {
	return &logger{
		Logger: slog.New(slog.DiscardHandler),
		level:  DefaultLevel,
	}
}

func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey, l)
}

// ParseLevel maps a level name to its slog level. Both the short and the
// long syslog spellings are accepted; anything else yields DefaultLevel.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "notice":
		return LevelNotice
	case "warn", "warning":
		return LevelWarning
	case "err", "error":
		return LevelError
	case "crit", "critical":
		return LevelCritical
	case "alert":
		return LevelAlert
	case "emerg", "emergency":
		return LevelEmergency
	default:
		return DefaultLevel
	}
}

// FromSlog wraps l. The reported level is the lowest one on the ladder
// that l's handler enables.
func FromSlog(l *slog.Logger) Logger {
	return &logger{
		Logger: l,
		level:  enabledLevel(l.Handler()),
	}
}

var ladder = []slog.Level{
	LevelTrace,
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelAlert,
	LevelEmergency,
}

func enabledLevel(h slog.Handler) slog.Level {
	ctx := context.Background()
	for _, lvl := range ladder {
		if h.Enabled(ctx, lvl) {
			return lvl
		}
	}
	// nothing is enabled
	return LevelEmergency + 1
}

// logger is a wrapper over slog with additional levels
type logger struct {
	*slog.Logger
	level slog.Level
}

func (l *logger) Level() slog.Level {
	return l.level
}

func (l *logger) With(args ...any) Logger {
	if len(args) == 0 {
		return l
	}

	return &logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
	}
}

func (l *logger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}

func (l *logger) Notice(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelNotice, msg, args...)
}

func (l *logger) Critical(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelCritical, msg, args...)
}

func (l *logger) Alert(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelAlert, msg, args...)
}

func (l *logger) Emergency(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelEmergency, msg, args...)
}

func (l *logger) SLog() *slog.Logger {
	return l.Logger
}
