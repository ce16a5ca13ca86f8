package logger

import (
	"context"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// ZapLogger implementa Logger sobre zap. Los fields se pasan como zap.Any
// ordenados por key para salida estable.
type ZapLogger struct {
	z *zap.Logger
}

type Options struct {
	Level  Level
	Format Format
	App    string
}

func New(opts Options) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var enc zapcore.Encoder
	switch opts.Format {
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), opts.Level.zapLevel())
	z := zap.New(core)
	if app := strings.TrimSpace(opts.App); app != "" {
		z = z.With(zap.String("app", app))
	}
	return &ZapLogger{z: z}
}

// NewZap envuelve un *zap.Logger existente (p.ej. zaptest u observer en tests).
func NewZap(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

// Nop descarta todo.
func Nop() Logger {
	return &ZapLogger{z: zap.NewNop()}
}

func (l *ZapLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &ZapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *ZapLogger) Debug(msg string, fields map[string]any) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *ZapLogger) Info(msg string, fields map[string]any)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *ZapLogger) Warn(msg string, fields map[string]any)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *ZapLogger) Error(msg string, fields map[string]any) { l.z.Error(msg, toZapFields(fields)...) }

// Sync vacía buffers de zap; se llama al apagar el proceso.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

func toZapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

type ctxKey struct{}

// WithContext guarda el logger en el contexto (lo usa el middleware de request).
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext devuelve el logger del request o fallback si no hay.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}
